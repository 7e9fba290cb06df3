package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/rocketshoes-cart/internal/adapter/catalog"
	"github.com/rl1809/rocketshoes-cart/internal/adapter/notify"
	"github.com/rl1809/rocketshoes-cart/internal/adapter/storage"
	"github.com/rl1809/rocketshoes-cart/internal/config"
	"github.com/rl1809/rocketshoes-cart/internal/core/domain"
	"github.com/rl1809/rocketshoes-cart/internal/core/service"
	"github.com/rl1809/rocketshoes-cart/internal/port"
)

const totalRequests = 50

// Fires concurrent AddProduct calls for one product against a running
// catalog API and checks the cart never exceeds the reported stock.
func main() {
	cfg := config.Load()
	productID := flag.Int("product", 1, "product id to add")
	flag.StringVar(&cfg.CatalogURL, "api", cfg.CatalogURL, "catalog API base URL")
	flag.Parse()

	ctx := context.Background()

	quiet := logrus.New()
	quiet.SetLevel(logrus.ErrorLevel)

	client, err := catalog.NewHTTPClient(catalog.Options{BaseURL: cfg.CatalogURL, Timeout: cfg.CatalogTimeout}, quiet)
	if err != nil {
		logrus.Fatalf("failed to create catalog client: %v", err)
	}

	stock, err := client.GetStock(ctx, *productID)
	if err != nil {
		logrus.Fatalf("failed to read stock: %v", err)
	}

	// Fresh storage for every run
	dir, err := os.MkdirTemp("", "cart-stress-*")
	if err != nil {
		logrus.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	kv, err := storage.NewFileStorage(filepath.Join(dir, "local_storage.json"))
	if err != nil {
		logrus.Fatalf("failed to create storage: %v", err)
	}

	store := service.NewCartStore(ctx, client, kv, notify.NewLogNotifier(quiet), service.WithLogger(quiet))

	// Counters
	var successCount atomic.Int32
	var outOfStockCount atomic.Int32
	var failCount atomic.Int32

	// Spawn concurrent requests
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := store.AddProduct(ctx, *productID)
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, service.ErrOutOfStock):
				outOfStockCount.Add(1)
			default:
				failCount.Add(1)
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	// Results
	expected := min(stock.Amount, totalRequests)
	amount := store.Cart().AmountOf(*productID)

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Product:          %d\n", *productID)
	fmt.Printf("Stock:            %d\n", stock.Amount)
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Added:            %d\n", successCount.Load())
	fmt.Printf("Out Of Stock:     %d\n", outOfStockCount.Load())
	fmt.Printf("Failed:           %d\n", failCount.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	// Assertions
	if amount == expected && int(successCount.Load()) == expected {
		fmt.Printf("PASS: cart holds %d units, matching stock\n", amount)
	} else {
		fmt.Printf("FAIL: expected %d units in cart, got %d (%d adds succeeded)\n",
			expected, amount, successCount.Load())
	}

	// Verify persisted cart
	persisted := domain.Cart{}
	raw, ok, err := kv.Get(ctx, port.CartStorageKey)
	if err != nil {
		logrus.Fatalf("failed to read persisted cart: %v", err)
	}
	if ok {
		if persisted, err = domain.UnmarshalCart([]byte(raw)); err != nil {
			logrus.Fatalf("failed to decode persisted cart: %v", err)
		}
	}

	if persisted.AmountOf(*productID) == amount {
		fmt.Println("PASS: persisted cart matches memory")
	} else {
		fmt.Printf("FAIL: persisted amount %d, in memory %d\n", persisted.AmountOf(*productID), amount)
	}
}
