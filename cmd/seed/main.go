package main

import (
	"fmt"

	"github.com/dujiao-next/storefront-cart/internal/config"
	"github.com/dujiao-next/storefront-cart/internal/logger"
	"github.com/dujiao-next/storefront-cart/internal/models"
	"github.com/dujiao-next/storefront-cart/internal/provider"
	"github.com/dujiao-next/storefront-cart/internal/service"
)

// 演示商品，价格为最小货币单位
var demoLines = []service.AddCartItemInput{
	{
		ProductID:      "iphone-15",
		ProductName:    "iPhone 15",
		UnitPrice:      22990000,
		ColorVariant:   models.ColorVariant{ColorID: "black", ColorName: "Đen", ColorSwatch: "#1F1F1F"},
		StorageVariant: models.StorageVariant{StorageID: "128gb", StorageName: "128GB"},
		Quantity:       1,
		ImageURL:       "/images/products/iphone-15-black.png",
	},
	{
		ProductID:      "iphone-15",
		ProductName:    "iPhone 15",
		UnitPrice:      25990000,
		ColorVariant:   models.ColorVariant{ColorID: "blue", ColorName: "Xanh", ColorSwatch: "#A7C1D9"},
		StorageVariant: models.StorageVariant{StorageID: "256gb", StorageName: "256GB"},
		Quantity:       2,
		ImageURL:       "/images/products/iphone-15-blue.png",
	},
	{
		ProductID:   "usb-c-cable",
		ProductName: "Cáp USB-C 1m",
		UnitPrice:   390000,
		Quantity:    3,
		ImageURL:    "/images/products/usb-c-cable.png",
	},
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(models.DBOptions{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.DSN,
		Pool: models.DBPoolConfig{
			MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
			MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
			ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
			ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
		},
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}
	defer func() {
		_ = models.CloseDB()
	}()

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	container := provider.NewContainer(cfg)
	defer container.Close()

	token, sessionID, expiresAt, err := container.CartSessionService.Issue("")
	if err != nil {
		stdLog.Fatalf("Failed to issue cart session: %v", err)
	}

	for _, line := range demoLines {
		if _, err := container.CartService.AddItem(sessionID, line); err != nil {
			stdLog.Fatalf("Failed to add %s: %v", line.ProductID, err)
		}
		stdLog.Printf("Added %s (%s/%s) x%d", line.ProductName,
			line.ColorVariant.ColorID, line.StorageVariant.StorageID, line.Quantity)
	}

	view, err := container.CartService.View(sessionID)
	if err != nil {
		stdLog.Fatalf("Failed to load cart: %v", err)
	}

	fmt.Println("Seed completed")
	fmt.Printf("session_id: %s\n", sessionID)
	fmt.Printf("cart_token: %s\n", token)
	fmt.Printf("expires_at: %s\n", expiresAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("items: %d, total: %s %s\n", view.Count, view.TotalText.String(), view.Currency)
	fmt.Printf("storage: %s\n", cfg.Storage.Driver)
}
