package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/codestreak/services"
	"github.com/cppla/codestreak/utils"
)

// QuoteController serves motivational quotes.
type QuoteController struct {
	quotes services.QuoteSource
}

// NewQuoteController creates a QuoteController.
func NewQuoteController(quotes services.QuoteSource) *QuoteController {
	return &QuoteController{quotes: quotes}
}

// Random returns one quote. It never fails; the source falls back to a built-in list.
func (q *QuoteController) Random(ctx *gin.Context) {
	utils.Success(ctx, gin.H{"quote": q.quotes.Random(ctx.Request.Context())})
}
