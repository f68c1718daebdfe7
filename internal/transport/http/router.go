package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/jmdelacruz/sarisari-pos/internal/handlers"
)

type Deps struct {
	AuthHandler     *handlers.AuthHandler
	CategoryHandler *handlers.CategoryHandler
	ItemHandler     *handlers.ItemHandler
	DeletedHandler  *handlers.DeletedHandler
	POSHandler      *handlers.POSHandler
	GameHandler     *handlers.GameHandler
	SettingsHandler *handlers.SettingsHandler
	BackupHandler   *handlers.BackupHandler

	// Owner guards mutating routes; nil leaves the API open (tests, trusted
	// local setups).
	Owner echo.MiddlewareFunc
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/login", d.AuthHandler.Login)

	v1.GET("/categories", d.CategoryHandler.ListCategories)
	v1.GET("/items", d.ItemHandler.GetItems)
	v1.GET("/items/:id", d.ItemHandler.GetItem)
	v1.GET("/transactions", d.POSHandler.GetTransactions)
	v1.GET("/leaderboard", d.GameHandler.GetLeaderboard)
	v1.GET("/settings", d.SettingsHandler.GetSettings)

	owner := v1.Group("")
	if d.Owner != nil {
		owner.Use(d.Owner)
	}

	owner.POST("/categories", d.CategoryHandler.CreateCategory)
	owner.PATCH("/categories/:id", d.CategoryHandler.RenameCategory)
	owner.DELETE("/categories/:id", d.CategoryHandler.DeleteCategory)

	owner.POST("/items", d.ItemHandler.CreateItem)
	owner.PATCH("/items/:id", d.ItemHandler.PatchItem)
	owner.DELETE("/items/:id", d.ItemHandler.DeleteItem)

	owner.GET("/deleted", d.DeletedHandler.ListDeleted)
	owner.POST("/deleted/:id/restore", d.DeletedHandler.RestoreItem)
	owner.DELETE("/deleted/:id", d.DeletedHandler.PurgeItem)

	owner.GET("/cart", d.POSHandler.GetCart)
	owner.POST("/cart", d.POSHandler.AddToCart)
	owner.POST("/cart/:id/decrement", d.POSHandler.DecrementLine)
	owner.DELETE("/cart/:id", d.POSHandler.RemoveLine)
	owner.DELETE("/cart", d.POSHandler.ClearCart)
	owner.POST("/checkout", d.POSHandler.Checkout)

	owner.POST("/game", d.GameHandler.StartGame)
	owner.POST("/game/:id/answer", d.GameHandler.Answer)
	owner.POST("/game/:id/next", d.GameHandler.Next)

	owner.PUT("/settings", d.SettingsHandler.PutSettings)
	owner.POST("/backup/export", d.BackupHandler.Export)
}
