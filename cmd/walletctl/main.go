// walletctl drives the wallet flows from the command line against a
// relay endpoint: key management, phone verification, shop registration,
// transfers, and history queries.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/loyaltyware/walletcore/internal/adapter/relay"
	"github.com/loyaltyware/walletcore/internal/adapter/secretstore"
	"github.com/loyaltyware/walletcore/internal/config"
	"github.com/loyaltyware/walletcore/internal/domain"
	"github.com/loyaltyware/walletcore/internal/usecase/countdown"
	"github.com/loyaltyware/walletcore/internal/usecase/history"
	"github.com/loyaltyware/walletcore/internal/usecase/link"
	"github.com/loyaltyware/walletcore/internal/usecase/shop"
	"github.com/loyaltyware/walletcore/internal/usecase/stagedop"
	"github.com/loyaltyware/walletcore/internal/usecase/transfer"
)

// systemClock adapts time.Now to the domain clock.
type systemClock struct{}

func (systemClock) Now() (time.Time, error) { return time.Now(), nil }

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("no .env loaded: %v", err)
	}
	cfg := config.Load()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	app := &app{cfg: cfg, log: logger}
	if err := app.run(os.Args[1], os.Args[2:]); err != nil {
		var opErr *domain.OperationError
		if errors.As(err, &opErr) {
			// The verbatim payload is the support side channel.
			logger.Error("operation failed", "diagnostic", opErr.Diagnostic())
		}
		log.Fatalf("walletctl %s: %v", os.Args[1], err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: walletctl <command> [flags]

commands:
  create-key                         generate and store a new wallet key
  import-key     -seed <hex>         import an existing key seed
  register-phone -country <cc> -number <n>
                                     verify a phone number (prompts for code)
  register-shop  -name <n> -currency <c>
  transfer       -to <addr> -amount <a> [-main]
  history        -kind provide|settlement|transfer [-shop <id>]`)
}

type app struct {
	cfg *config.Config
	log *slog.Logger
}

func (a *app) run(command string, args []string) error {
	switch command {
	case "create-key":
		return a.createKey()
	case "import-key":
		return a.importKey(args)
	case "register-phone":
		return a.registerPhone(args)
	case "register-shop":
		return a.registerShop(args)
	case "transfer":
		return a.transfer(args)
	case "history":
		return a.history(args)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) openStore() (*secretstore.Store, error) {
	return secretstore.Open(a.cfg.DBPath)
}

// boundClient loads the stored key and returns a relay client bound to
// its address.
func (a *app) boundClient() (*relay.Client, error) {
	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.BoundClient(relay.New(a.cfg.RelayBaseURL, a.cfg.RelayAPIKey))
}

func (a *app) createKey() error {
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()
	address, err := store.GenerateKey()
	if err != nil {
		return err
	}
	fmt.Println("address:", address)
	return nil
}

func (a *app) importKey(args []string) error {
	fs := flag.NewFlagSet("import-key", flag.ExitOnError)
	seed := fs.String("seed", "", "32-byte key seed, hex encoded")
	fs.Parse(args)

	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()
	address, err := store.ImportKey(*seed)
	if err != nil {
		return err
	}
	fmt.Println("address:", address)
	return nil
}

func (a *app) registerPhone(args []string) error {
	fs := flag.NewFlagSet("register-phone", flag.ExitOnError)
	country := fs.String("country", "82", "country phone code")
	number := fs.String("number", "", "local phone number, digits only")
	fs.Parse(args)

	client, err := a.boundClient()
	if err != nil {
		return err
	}

	exec := stagedop.NewExecutor(nil)
	window := stagedop.NewCodeWindow()
	svc := link.NewService(client, client, exec, window, a.cfg.CodeTTLSec)

	ctx := context.Background()
	if err := svc.Register(ctx, *country, *number); err != nil {
		return err
	}
	a.log.Info("verification requested", "window", countdown.FormatMMSS(svc.Remaining()))

	fmt.Print("enter one-time code: ")
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return fmt.Errorf("no code entered")
	}
	if err := svc.Submit(ctx, scanner.Text()); err != nil {
		return err
	}
	fmt.Println("phone verified")
	return nil
}

func (a *app) registerShop(args []string) error {
	fs := flag.NewFlagSet("register-shop", flag.ExitOnError)
	name := fs.String("name", "", "shop name")
	currency := fs.String("currency", a.cfg.Currency, "settlement currency")
	fs.Parse(args)

	client, err := a.boundClient()
	if err != nil {
		return err
	}

	svc := shop.NewService(client, stagedop.NewExecutor(nil), systemClock{}, client.Address())
	shopID, err := svc.Register(context.Background(), *name, *currency)
	if err != nil {
		return err
	}
	fmt.Println("shop registered:", domain.TruncateMiddle(shopID, 16))
	return nil
}

func (a *app) transfer(args []string) error {
	fs := flag.NewFlagSet("transfer", flag.ExitOnError)
	to := fs.String("to", "", "receiver address")
	amount := fs.String("amount", "", "amount in display units")
	main := fs.Bool("main", false, "transfer on the main chain instead of the ledger")
	fs.Parse(args)

	client, err := a.boundClient()
	if err != nil {
		return err
	}

	svc := transfer.NewService(client, stagedop.NewExecutor(nil), client.Address())
	ctx := context.Background()

	summary, err := svc.Summary(ctx)
	if err != nil {
		return err
	}
	balanceRaw := summary.LedgerBalance
	if *main {
		balanceRaw = summary.MainChainBalance
	}
	balance, err := domain.AmountFromRaw(balanceRaw, domain.TokenDecimals)
	if err != nil {
		return err
	}
	fee, err := domain.AmountFromRaw(summary.TransferFee, domain.TokenDecimals)
	if err != nil {
		return err
	}

	receive, err := transfer.Quote(*amount, balance.String(), fee.String())
	if err != nil {
		return err
	}
	a.log.Info("transfer quote",
		"available", balance.Format(true),
		"fee", fee.Format(true),
		"receive", receive)

	if *main {
		err = svc.MainChain(ctx, *to, *amount)
	} else {
		err = svc.SideChain(ctx, *to, *amount)
	}
	if err != nil {
		return err
	}
	fmt.Println("transfer done")
	return nil
}

func (a *app) history(args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	kind := fs.String("kind", "provide", "provide, settlement, or transfer")
	shopID := fs.String("shop", "", "shop id for provide/settlement timelines")
	fs.Parse(args)

	client, err := a.boundClient()
	if err != nil {
		return err
	}

	svc := history.NewService(client, client, a.cfg.Currency)
	ctx := context.Background()

	var records []domain.HistoryRecord
	switch *kind {
	case "provide":
		records, err = svc.ProvideTimeline(ctx, *shopID)
	case "settlement":
		records, err = svc.SettlementTimeline(ctx, *shopID)
	case "transfer":
		records, err = svc.TransferTimeline(ctx, client.Address())
	default:
		return fmt.Errorf("unknown history kind %q", *kind)
	}
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("no history")
		return nil
	}
	for _, r := range records {
		fmt.Printf("%s  %-18s %s %s\n",
			time.Unix(r.Timestamp, 0).Format("2006/01/02 15:04:05"),
			r.Kind, r.Amount.Format(true), r.Currency)
	}
	return nil
}
