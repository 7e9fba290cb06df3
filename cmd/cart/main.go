package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/rocketshoes-cart/internal/adapter/catalog"
	"github.com/rl1809/rocketshoes-cart/internal/adapter/notify"
	"github.com/rl1809/rocketshoes-cart/internal/adapter/storage"
	"github.com/rl1809/rocketshoes-cart/internal/config"
	"github.com/rl1809/rocketshoes-cart/internal/core/domain"
	"github.com/rl1809/rocketshoes-cart/internal/core/service"
	"github.com/rl1809/rocketshoes-cart/internal/logger"
	"github.com/rl1809/rocketshoes-cart/internal/port"
)

const usage = `usage: cart [flags] <command> [args]

commands:
  list                      show the cart with subtotals
  products                  show the catalog
  add <product-id>          add one unit of a product
  remove <product-id>       remove a product from the cart
  update <product-id> <n>   set the amount of a product in the cart
`

var errUsage = errors.New("invalid usage")

type productLister interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

type app struct {
	store   *service.CartStore
	catalog productLister
	out     io.Writer
}

func main() {
	cfg := config.Load()

	fs := flag.NewFlagSet("cart", flag.ExitOnError)
	fs.StringVar(&cfg.CatalogURL, "api", cfg.CatalogURL, "catalog API base URL")
	backend := fs.String("storage", string(cfg.Storage), "cart storage backend: file, redis or sqlite")
	fs.Usage = func() { fmt.Fprint(fs.Output(), usage); fs.PrintDefaults() }
	fs.Parse(os.Args[1:])
	cfg.Storage = config.StorageBackend(*backend)

	log := logger.New(logger.Options{
		Service: "cart",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kv, closeStorage, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to open cart storage: %v", err)
	}
	defer closeStorage()

	client, err := catalog.NewHTTPClient(catalog.Options{
		BaseURL:   cfg.CatalogURL,
		Timeout:   cfg.CatalogTimeout,
		CacheSize: cfg.ProductCacheSize,
	}, log)
	if err != nil {
		log.Fatalf("failed to create catalog client: %v", err)
	}

	store := service.NewCartStore(ctx, client, kv, notify.NewLogNotifier(log), service.WithLogger(log))

	a := &app{store: store, catalog: client, out: os.Stdout}
	if err := a.run(ctx, fs.Args()); err != nil {
		if errors.Is(err, errUsage) {
			fs.Usage()
			os.Exit(2)
		}
		closeStorage()
		os.Exit(1)
	}
}

func openStorage(ctx context.Context, cfg config.Config) (port.KeyValueStorage, func(), error) {
	switch cfg.Storage {
	case config.StorageFile:
		fs, err := storage.NewFileStorage(cfg.CartFile)
		if err != nil {
			return nil, nil, err
		}
		return fs, func() {}, nil

	case config.StorageRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, nil, errors.Wrap(err, "connect redis")
		}
		return storage.NewRedisStorage(rdb), func() { rdb.Close() }, nil

	case config.StorageSQLite:
		db, err := storage.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		s, err := storage.NewSQLiteStorage(ctx, db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return s, func() { db.Close() }, nil
	}

	return nil, nil, errors.Errorf("unknown storage backend %q", cfg.Storage)
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "list":
		a.printCart(a.store.Cart())
		return nil

	case "products":
		products, err := a.catalog.ListProducts(ctx)
		if err != nil {
			return err
		}
		a.printProducts(products)
		return nil

	case "add":
		id, err := intArg(args, 1)
		if err != nil {
			return err
		}
		cart, err := a.store.AddProduct(ctx, id)
		if err != nil {
			return err
		}
		a.printCart(cart)
		return nil

	case "remove":
		id, err := intArg(args, 1)
		if err != nil {
			return err
		}
		cart, err := a.store.RemoveProduct(ctx, id)
		if err != nil {
			return err
		}
		a.printCart(cart)
		return nil

	case "update":
		id, err := intArg(args, 1)
		if err != nil {
			return err
		}
		amount, err := intArg(args, 2)
		if err != nil {
			return err
		}
		cart, err := a.store.UpdateProductAmount(ctx, service.UpdateProductAmount{ProductID: id, Amount: amount})
		if err != nil {
			return err
		}
		a.printCart(cart)
		return nil
	}

	return errUsage
}

func intArg(args []string, i int) (int, error) {
	if len(args) <= i {
		return 0, errUsage
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, errors.Wrapf(errUsage, "argument %q is not a number", args[i])
	}
	return n, nil
}

func (a *app) printCart(cart domain.Cart) {
	if len(cart) == 0 {
		fmt.Fprintln(a.out, "cart is empty")
		return
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRODUCT\tPRICE\tAMOUNT\tSUBTOTAL")
	for _, p := range cart {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", p.ID, p.Title, formatPrice(p.Price), p.Amount, formatPrice(p.Subtotal()))
	}
	w.Flush()

	fmt.Fprintf(a.out, "%s in cart, total %s\n", pluralize(cart.TotalItems(), "item"), formatPrice(cart.Subtotal()))
}

func (a *app) printProducts(products []domain.Product) {
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRODUCT\tPRICE")
	for _, p := range products {
		fmt.Fprintf(w, "%d\t%s\t%s\n", p.ID, p.Title, formatPrice(p.Price))
	}
	w.Flush()
}

func formatPrice(v float64) string {
	return "R$ " + humanize.FormatFloat("#.###,##", v)
}

func pluralize(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
