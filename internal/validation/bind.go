package validation

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// BindCheckoutForm binds the form (urlencoded, multipart or JSON) into a CheckoutForm.
// If binding fails, it writes a 400 response and returns an error for the handler to short-circuit.
func BindCheckoutForm(c *gin.Context) (CheckoutForm, error) {
	var form CheckoutForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid_request_body",
			"msg":   err.Error(),
		})
		return form, err
	}
	return form, nil
}

// WriteFieldErrors writes the structured 400 for a form that failed the checker.
// Every field is present; valid ones carry "".
func WriteFieldErrors(c *gin.Context, res Result) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":  "validation_failed",
		"fields": res,
	})
}
