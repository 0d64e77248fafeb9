package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// CartTokenHeader carries the guest cart token in both directions.
const CartTokenHeader = "X-Cart-Token"

// GetCartToken returns the guest cart token sent by the client, if any.
// Tokens are opaque here; the cart service decides whether they are valid.
func GetCartToken(c echo.Context) string {
	return strings.TrimSpace(c.Request().Header.Get(CartTokenHeader))
}

// SetCartToken tells the client which guest cart to send next time.
// Signed-in carts have no token and leave the header unset.
func SetCartToken(c echo.Context, token string) {
	if token == "" {
		return
	}
	c.Response().Header().Set(CartTokenHeader, token)
}
