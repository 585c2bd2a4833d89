package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/partyplan/party-order-backend/internal/adapters/hostsys"
	"github.com/partyplan/party-order-backend/internal/application/assembly"
	"github.com/partyplan/party-order-backend/internal/domain/catalog"
	"github.com/partyplan/party-order-backend/internal/domain/order"
	"github.com/partyplan/party-order-backend/internal/infrastructure/config"
	"github.com/partyplan/party-order-backend/internal/infrastructure/logging"
	"github.com/partyplan/party-order-backend/internal/infrastructure/storage"
)

// partyFile is the YAML shape consumed by the -party flag.
type partyFile struct {
	PartyID       string             `yaml:"party_id"`
	VoucherCredit float64            `yaml:"voucher_credit"`
	Host          participantEntry   `yaml:"host"`
	Guests        []participantEntry `yaml:"guests"`
}

type participantEntry struct {
	Customer string      `yaml:"customer"`
	Items    []itemEntry `yaml:"items"`
}

type itemEntry struct {
	SKU string `yaml:"sku"`
	Qty int    `yaml:"qty"`
	// Rate overrides the item master default rate when non-zero.
	Rate float64 `yaml:"rate"`
}

// itemDataFile is the YAML shape behind the item_data_path config key.
type itemDataFile struct {
	Items     map[string]hostsys.ItemRecord `yaml:"items"`
	Customers map[string]string             `yaml:"customers"`
}

func main() {
	var (
		configFile = flag.String("config", "", "Configuration file path")
		partyPath  = flag.String("party", "", "Party order YAML file (required)")
		dryRun     = flag.Bool("dry-run", false, "Run the full pipeline without submitting")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	// Load .env if present; real env vars win.
	_ = godotenv.Load()

	cfg := config.LoadOrEnvWithPath(*configFile)
	if *verbose {
		cfg.Observability.Logging.Level = slog.LevelDebug.String()
	}

	logger := logging.NewLoggerWithSystem(cfg.Observability.Logging, "assemble")

	if *partyPath == "" {
		logger.Error("missing required -party flag")
		flag.Usage()
		os.Exit(2)
	}

	ord, err := loadParty(*partyPath)
	if err != nil {
		logger.Error("failed to load party file", "path", *partyPath, "error", err)
		os.Exit(1)
	}

	sys, err := buildHostSystem(cfg.Promotion.ItemDataPath)
	if err != nil {
		logger.Error("failed to load item data", "path", cfg.Promotion.ItemDataPath, "error", err)
		os.Exit(1)
	}

	resolveRates(context.Background(), ord, sys.Lookup)

	cat, err := loadCatalog(cfg.Promotion.CatalogPath, logger)
	if err != nil {
		logger.Error("failed to load promotion catalog", "path", cfg.Promotion.CatalogPath, "error", err)
		os.Exit(1)
	}

	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	orchestrator := assembly.NewOrchestrator(sys, cat, store, logger)

	result, err := orchestrator.Run(context.Background(), ord, assembly.Options{DryRun: *dryRun})
	if err != nil {
		logger.Error("assembly failed", "party", ord.PartyID, "error", err)
		os.Exit(1)
	}

	logger.Info("assembly finished",
		"party", ord.PartyID,
		"state", string(result.State),
		"voucher_consumed", result.VoucherConsumed,
		"voucher_remainder", result.VoucherRemainder,
		"promotions_applied", result.PromotionsApplied,
		"orders", len(result.CreatedOrderIDs),
		"dry_run", *dryRun,
	)
	for _, id := range result.CreatedOrderIDs {
		fmt.Println(id)
	}
}

// loadParty reads a party YAML file into a domain order.
func loadParty(path string) (*order.Order, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read party file: %w", err)
	}

	var pf partyFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse party file: %w", err)
	}
	if pf.PartyID == "" {
		return nil, fmt.Errorf("party file missing party_id")
	}
	if pf.Host.Customer == "" {
		return nil, fmt.Errorf("party file missing host customer")
	}

	ord := &order.Order{
		PartyID:       pf.PartyID,
		VoucherCredit: pf.VoucherCredit,
	}
	ord.Participants = append(ord.Participants, toParticipant(pf.Host, order.RoleHost))
	for _, g := range pf.Guests {
		ord.Participants = append(ord.Participants, toParticipant(g, order.RoleGuest))
	}
	return ord, nil
}

func toParticipant(entry participantEntry, role order.Role) *order.Participant {
	p := &order.Participant{
		CustomerID: entry.Customer,
		Role:       role,
	}
	for _, it := range entry.Items {
		p.Items = append(p.Items, order.NewLineItem(it.SKU, it.Qty, it.Rate))
	}
	return p
}

// resolveRates fills in item master default rates for lines the party
// file priced at zero.
func resolveRates(ctx context.Context, ord *order.Order, lookup hostsys.Lookup) {
	for _, p := range ord.Participants {
		for _, li := range p.Items {
			if li.Rate != 0 || !li.Orderable() {
				continue
			}
			master, err := lookup.ItemMaster(ctx, li.ItemCode)
			if err != nil {
				continue
			}
			li.SetRate(master.DefaultRate)
		}
	}
}

// buildHostSystem creates the in-memory host system from the item data
// file, wired to a terminal chooser for interactive decisions.
func buildHostSystem(path string) (*hostsys.System, error) {
	mem := hostsys.NewInMemorySystem()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read item data: %w", err)
		}
		var file itemDataFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse item data: %w", err)
		}
		for sku, rec := range file.Items {
			mem.AddItem(sku, rec)
		}
		for id, name := range file.Customers {
			mem.AddCustomer(id, name)
		}
	}

	sys := mem.System()
	sys.Chooser = hostsys.NewTerminalChooser(os.Stdin, os.Stdout)
	return sys, nil
}

// loadCatalog loads the promotion catalog. An empty path means the
// built-in campaign defaults; a missing file disables the promotion
// stages instead of blocking the order.
func loadCatalog(path string, logger *slog.Logger) (*catalog.Catalog, error) {
	if path == "" {
		logger.Debug("no catalog path configured, using built-in defaults")
		return catalog.Default(), nil
	}
	cat, err := catalog.Load(path)
	if errors.Is(err, catalog.ErrNotConfigured) {
		logger.Warn("promotion catalog file missing, assembling without promotions", "path", path)
		return nil, nil
	}
	return cat, err
}
