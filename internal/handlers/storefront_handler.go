package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/imrishuroy/go-storefront/internal/aws"
	"github.com/imrishuroy/go-storefront/internal/cart"
	"github.com/imrishuroy/go-storefront/internal/catalog"
	"github.com/imrishuroy/go-storefront/internal/checkout"
	"github.com/imrishuroy/go-storefront/internal/payment"
	"github.com/imrishuroy/go-storefront/internal/render"
	"github.com/imrishuroy/go-storefront/internal/storage"
	"github.com/imrishuroy/go-storefront/internal/storefront"
	"github.com/imrishuroy/go-storefront/internal/validation"
)

// HandlerConfig groups dependencies for the storefront handlers.
type HandlerConfig struct {
	Catalog  storefront.Catalog
	Cart     *cart.Engine
	Store    *storage.Store
	Gateway  *payment.Hosted
	Notifier checkout.Notifier // optional
	Metrics  aws.Recorder      // optional
	Policy   checkout.AmountPolicy
}

// RegisterStorefrontRoutes registers the listing, cart, checkout and payment routes.
func RegisterStorefrontRoutes(r *gin.Engine, cfg HandlerConfig) {
	if cfg.Metrics == nil {
		cfg.Metrics = aws.NopRecorder{}
	}
	checker := validation.NewChecker()

	listing := func(view *listingView) *storefront.Controller {
		return storefront.New(storefront.Deps{
			Catalog: cfg.Catalog,
			Cart:    cfg.Cart,
			Metrics: cfg.Metrics,
		}, view)
	}
	checkoutFor := func(view *checkoutView) *checkout.Controller {
		return checkout.New(checkout.Deps{
			Store:    cfg.Store,
			Checker:  checker,
			Gateway:  cfg.Gateway,
			Cart:     cfg.Cart,
			Notifier: cfg.Notifier,
			Metrics:  cfg.Metrics,
			Policy:   cfg.Policy,
		}, view)
	}

	r.GET("/products", func(c *gin.Context) {
		ctx := c.Request.Context()
		view := &listingView{}
		ctrl := listing(view)

		var err error
		if raw, ok := c.GetQuery("page"); ok {
			page, convErr := strconv.Atoi(raw)
			if convErr != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_page", "detail": convErr.Error()})
				return
			}
			err = ctrl.Paginate(ctx, page)
		} else {
			err = ctrl.Init(ctx)
		}
		if err != nil {
			writeListingError(c, err)
			return
		}
		writeListing(c, view, ctrl.Pages(), cfg.Cart.Count(ctx))
	})

	r.GET("/products/search", func(c *gin.Context) {
		ctx := c.Request.Context()
		view := &listingView{}
		ctrl := listing(view)

		// the HTTP client debounces keystrokes; each request is one search
		if err := ctrl.Search(ctx, c.Query("q")); err != nil {
			writeListingError(c, err)
			return
		}
		writeListing(c, view, ctrl.Pages(), cfg.Cart.Count(ctx))
	})

	r.POST("/cart/items/:id", func(c *gin.Context) {
		ctx := c.Request.Context()
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_product_id"})
			return
		}

		view := &listingView{}
		if err := listing(view).AddToCart(ctx, id); err != nil {
			if errors.Is(err, catalog.ErrFetchFailed) {
				c.JSON(http.StatusBadGateway, gin.H{"error": "product_unavailable", "detail": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "add_to_cart_failed", "detail": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"product_id": id, "label": view.labels[id], "count": view.count})
	})

	r.GET("/cart", func(c *gin.Context) {
		ctx := c.Request.Context()
		total, err := cfg.Cart.SavePayable(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cart_unavailable", "detail": err.Error()})
			return
		}
		items := cfg.Cart.Items(ctx)
		c.JSON(http.StatusOK, gin.H{
			"items": items,
			"count": len(items),
			"total": render.FormatPrice(total),
		})
	})

	r.POST("/checkout", func(c *gin.Context) {
		ctx := c.Request.Context()
		form, err := validation.BindCheckoutForm(c)
		if err != nil {
			// BindCheckoutForm already wrote a 400
			return
		}

		view := &checkoutView{}
		sub, err := checkoutFor(view).Submit(ctx, form)
		switch {
		case errors.Is(err, checkout.ErrNothingToPay):
			c.JSON(http.StatusConflict, gin.H{"error": "nothing_to_pay", "alerts": view.alerts})
			return
		case errors.Is(err, checkout.ErrInvalidForm):
			validation.WriteFieldErrors(c, sub.Result)
			return
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "checkout_failed", "detail": err.Error()})
			return
		}

		if err := sub.Session.Open(ctx); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "payment_open_failed", "detail": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"alerts":  view.alerts,
			"amount":  render.FormatPrice(sub.Amount),
			"payment": sub.Session.Options(),
		})
	})

	r.POST("/payments/callback", func(c *gin.Context) {
		ctx := c.Request.Context()
		var cb paymentCallback
		if err := c.ShouldBindJSON(&cb); err != nil || cb.OrderID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request_body"})
			return
		}

		var err error
		if cb.PaymentID != "" {
			err = cfg.Gateway.Complete(ctx, cb.OrderID, cb.PaymentID, cb.Signature)
		} else {
			err = cfg.Gateway.Fail(ctx, cb.OrderID, cb.Error.Code, cb.Error.Description)
		}
		if errors.Is(err, payment.ErrUnknownOrder) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown_order", "order_id": cb.OrderID})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "callback_failed", "detail": err.Error()})
			return
		}

		if cb.PaymentID == "" {
			c.JSON(http.StatusOK, gin.H{"status": "failed", "message": "Payment Failed! Please Try Again."})
			return
		}
		intent, ok := checkoutFor(&checkoutView{}).Summary(ctx)
		if !ok || intent.OrderID != cb.OrderID {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "order_not_recorded", "order_id": cb.OrderID})
			return
		}
		c.Header("Location", checkout.OrderSummaryPath)
		c.JSON(http.StatusOK, gin.H{"status": "paid", "order": intent, "redirect": checkout.OrderSummaryPath})
	})

	r.GET(checkout.OrderSummaryPath, func(c *gin.Context) {
		intent, ok := checkoutFor(&checkoutView{}).Summary(c.Request.Context())
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "no_order"})
			return
		}
		c.JSON(http.StatusOK, intent)
	})
}

type paymentCallback struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
	Error     struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func writeListingError(c *gin.Context, err error) {
	if errors.Is(err, storefront.ErrPageOutOfRange) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page_out_of_range", "detail": err.Error()})
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{"error": "catalog_unavailable", "detail": err.Error()})
}

// writeListing renders the page fragment: cart badge, product list and pagination.
func writeListing(c *gin.Context, view *listingView, pages []render.PageButton, count int) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<span class=\"js-cartCount\">%d</span>\n<ul class=\"js-products\">\n", count)
	if err := render.WriteHTML(&buf, view.cards); err != nil {
		log.Printf("[handlers] rendering products: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "render_failed"})
		return
	}
	buf.WriteString("</ul>\n<nav class=\"js-pagination\">")
	if err := render.WritePaginationHTML(&buf, pages); err != nil {
		log.Printf("[handlers] rendering pagination: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "render_failed"})
		return
	}
	buf.WriteString("</nav>\n")

	c.Header("X-Cart-Count", strconv.Itoa(count))
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
