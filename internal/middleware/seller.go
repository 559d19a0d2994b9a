package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SellerIDKey is the gin context key holding the seller scope of a request
const SellerIDKey = "seller_id"

// SellerMiddleware resolves the seller a catalog request acts for.
// A seller id from the token wins over the X-Seller-ID and X-Vendor-ID headers.
// Requests without one are rejected.
func SellerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sellerID := c.GetString(SellerIDKey)
		if sellerID == "" {
			sellerID = c.GetString("vendor_id")
		}
		if sellerID == "" {
			sellerID = c.GetHeader("X-Seller-ID")
		}
		if sellerID == "" {
			sellerID = c.GetHeader("X-Vendor-ID")
		}

		if sellerID == "" {
			abortWithError(c, http.StatusUnauthorized, "SELLER_REQUIRED",
				"Seller ID is required. Use a token with a seller_id claim or include the X-Seller-ID header.")
			return
		}

		c.Set(SellerIDKey, sellerID)
		c.Next()
	}
}

// GetSellerID retrieves the seller ID from gin context
func GetSellerID(c *gin.Context) string {
	return c.GetString(SellerIDKey)
}
