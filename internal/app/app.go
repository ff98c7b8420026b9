// Package app wires repositories, use cases and gateways into a running
// application.
package app

import (
	"context"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/promosink/apparel/internal/adapters/fulfillment/promosink"
	"github.com/promosink/apparel/internal/adapters/httpserver"
	"github.com/promosink/apparel/internal/adapters/ratecard"
	"github.com/promosink/apparel/internal/adapters/repo/postgres"
	"github.com/promosink/apparel/internal/adapters/shipping/easypost"
	"github.com/promosink/apparel/internal/adapters/storage/localfs"
	"github.com/promosink/apparel/internal/domain"
	"github.com/promosink/apparel/internal/usecase"
)

type Config struct {
	Port       string
	StorageDir string

	// PricingSource selects where the rate card comes from: "live" reads
	// whatever is in the price_tiers table, "fixture" replaces the table
	// from the .xlsx at RateCardPath on startup.
	PricingSource string
	RateCardPath  string

	FulfillmentEndpoint string
	FulfillmentAPIKey   string
	EasyPostAPIKey      string

	Origin domain.Address
}

func LoadConfig() Config {
	cfg := Config{
		Port:                getenv("PORT", "8080"),
		StorageDir:          getenv("STORAGE_DIR", "uploads"),
		PricingSource:       getenv("PRICING_SOURCE", "live"),
		RateCardPath:        getenv("RATE_CARD_PATH", "ratecard.xlsx"),
		FulfillmentEndpoint: os.Getenv("FULFILLMENT_API_URL"),
		FulfillmentAPIKey:   os.Getenv("FULFILLMENT_API_KEY"),
		EasyPostAPIKey:      os.Getenv("EASYPOST_API_KEY"),
		Origin: domain.Address{
			Name:     getenv("WAREHOUSE_NAME", "Promos Ink Warehouse"),
			Address1: getenv("WAREHOUSE_ADDRESS1", "2200 Commerce Dr"),
			City:     getenv("WAREHOUSE_CITY", "Irving"),
			State:    getenv("WAREHOUSE_STATE", "TX"),
			Zip:      getenv("WAREHOUSE_ZIP", "75063"),
			Country:  "US",
		},
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

type App struct {
	DB  *gorm.DB
	Cfg Config

	Tiers     domain.PriceTierRepo
	Customers domain.CustomerRepo
	Products  domain.ProductRepo
	Storage   domain.FileStorage

	PricingUC *usecase.PricingUC
	CartUC    *usecase.CartUC
	WizardUC  *usecase.WizardUC
	OrderUC   *usecase.OrderUC
	ProofUC   *usecase.ProofUC
	Shipping  domain.ShippingRateProvider
}

func NewApp(db *gorm.DB, cfg Config) (*App, error) {
	a := &App{DB: db, Cfg: cfg}

	a.Tiers = postgres.NewPriceTierRepo(db)
	a.Customers = postgres.NewCustomerRepo(db)
	a.Products = postgres.NewProductRepo(db)
	cartRepo := postgres.NewCartRepo(db)
	orderRepo := postgres.NewOrderRepo(db)
	proofRepo := postgres.NewProofRepo(db)

	if cfg.StorageDir != "" {
		if err := os.MkdirAll(cfg.StorageDir, 0o755); err != nil {
			log.Warn().Err(err).Str("dir", cfg.StorageDir).Msg("uploads dir unavailable, artwork degrades to placeholders")
		} else {
			a.Storage = localfs.New(cfg.StorageDir)
		}
	}

	a.PricingUC = &usecase.PricingUC{Tiers: a.Tiers}
	a.CartUC = &usecase.CartUC{Carts: cartRepo, Products: a.Products, Pricing: a.PricingUC}
	a.WizardUC = &usecase.WizardUC{Storage: a.Storage, Carts: a.CartUC}
	a.OrderUC = &usecase.OrderUC{
		Orders:      orderRepo,
		Carts:       cartRepo,
		Fulfillment: promosink.NewGateway(cfg.FulfillmentEndpoint, cfg.FulfillmentAPIKey),
	}
	a.ProofUC = &usecase.ProofUC{Orders: orderRepo, Proofs: proofRepo, Storage: a.Storage}
	a.Shipping = easypost.New(cfg.EasyPostAPIKey)

	return a, nil
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(a.PricingUC, a.WizardUC, a.CartUC, a.OrderUC, a.ProofUC, a.Shipping, a.Cfg.Origin, a.Cfg.StorageDir)
}

func (a *App) MigrateAndSeed(ctx context.Context) error {
	if err := a.DB.AutoMigrate(
		&domain.CustomerAccount{},
		&domain.Product{}, &domain.Variant{},
		&domain.PriceTier{},
		&domain.Cart{}, &domain.CartLine{},
		&domain.Order{}, &domain.OrderLine{}, &domain.OrderDecoration{},
		&domain.ArtworkAsset{}, &domain.Proof{},
	); err != nil {
		return err
	}

	if a.Cfg.PricingSource == "fixture" {
		tiers, err := ratecard.Load(a.Cfg.RateCardPath)
		if err != nil {
			return err
		}
		if err := a.Tiers.ReplaceAll(ctx, tiers); err != nil {
			return err
		}
		log.Info().Int("tiers", len(tiers)).Str("path", a.Cfg.RateCardPath).Msg("rate card loaded from fixture")
		return nil
	}

	n, err := a.Tiers.Count(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		if err := a.seed(ctx); err != nil {
			return err
		}
	}
	return nil
}

// DemoCustomerAccountID is the seeded account carrying negotiated pricing.
var DemoCustomerAccountID = uuid.MustParse("7b8a1c2e-0000-4000-8000-000000000001")

func intp(v int) *int { return &v }

// seed loads the demo rate card and catalog used by a fresh database: three
// global screen-print quantity bands plus two negotiated customer bands.
func (a *App) seed(ctx context.Context) error {
	acct := &domain.CustomerAccount{ID: DemoCustomerAccountID, Name: "Acme Outfitters", AccountNumber: "ACME-001"}
	if err := a.Customers.Save(ctx, acct); err != nil {
		return err
	}

	tiers := []domain.PriceTier{
		{ID: uuid.New(), Method: domain.MethodScreen, MinQty: 1, MaxQty: intp(11), PricePerUnit: 5.00, SetupCharge: 25.00},
		{ID: uuid.New(), Method: domain.MethodScreen, MinQty: 12, MaxQty: intp(47), PricePerUnit: 4.00, SetupCharge: 25.00},
		{ID: uuid.New(), Method: domain.MethodScreen, MinQty: 48, PricePerUnit: 3.00, SetupCharge: 25.00},
		{ID: uuid.New(), Method: domain.MethodScreen, CustomerAccountID: &acct.ID, MinQty: 1, MaxQty: intp(11), PricePerUnit: 4.50, SetupCharge: 20.00},
		{ID: uuid.New(), Method: domain.MethodScreen, CustomerAccountID: &acct.ID, MinQty: 12, PricePerUnit: 3.50, SetupCharge: 20.00},
	}
	if err := a.Tiers.ReplaceAll(ctx, tiers); err != nil {
		return err
	}

	tee := &domain.Product{
		ID:        uuid.New(),
		StyleCode: "PC61",
		Name:      "Essential Tee",
		Brand:     "Port & Company",
		Category:  "t-shirts",
		Fabric:    "100% cotton",
		BasePrice: 4.25,
		Variants: []domain.Variant{
			{Color: "Black", Size: "M", SupplierSKU: "PC61-BLK-M", WeightOz: 6.1},
			{Color: "Black", Size: "L", SupplierSKU: "PC61-BLK-L", WeightOz: 6.4},
			{Color: "White", Size: "M", SupplierSKU: "PC61-WHT-M", WeightOz: 6.1},
		},
	}
	if err := a.Products.Save(ctx, tee); err != nil {
		return err
	}
	log.Info().Msg("seeded demo customer, rate card and catalog")
	return nil
}
