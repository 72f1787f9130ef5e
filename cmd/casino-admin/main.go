package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"flappy-casino/internal/config"
	"flappy-casino/internal/ledger"
	"flappy-casino/internal/store"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// runContext is bound into every command's Run method.
type runContext struct {
	ctx    context.Context
	ledger *ledger.Ledger
	out    io.Writer
}

type CLI struct {
	CreateAccount CreateAccountCmd `cmd:"" help:"Register a player account."`
	Balance       BalanceCmd       `cmd:"" help:"Show a wallet balance."`
	Topup         TopupCmd         `cmd:"" help:"Credit coins to a wallet."`
	Ledger        LedgerCmd        `cmd:"" help:"List recent ledger entries for a player."`
	Leaderboard   LeaderboardCmd   `cmd:"" help:"Show players ranked by poker result."`
}

type CreateAccountCmd struct {
	Nick  string `required:"" help:"Player nickname."`
	PIN   string `name:"pin" required:"" help:"Numeric PIN used to join tables."`
	Coins int64  `help:"Starting wallet balance (defaults to ADMIN_START_COINS)." default:"-1"`
}

func (c *CreateAccountCmd) Run(rc *runContext, cfg config.AdminConfig) error {
	coins := c.Coins
	if coins < 0 {
		coins = cfg.StartCoins
	}
	if err := rc.ledger.Register(rc.ctx, c.Nick, c.PIN, coins); err != nil {
		return fmt.Errorf("create account %s: %w", c.Nick, err)
	}
	fmt.Fprintf(rc.out, "created %s with %d coins\n", ledger.NormalizeNick(c.Nick), coins)
	return nil
}

type BalanceCmd struct {
	Nick string `required:"" help:"Player nickname."`
}

func (c *BalanceCmd) Run(rc *runContext) error {
	bal, err := rc.ledger.Balance(rc.ctx, ledger.NormalizeNick(c.Nick))
	if err != nil {
		return fmt.Errorf("balance %s: %w", c.Nick, err)
	}
	fmt.Fprintf(rc.out, "%s: %d\n", ledger.NormalizeNick(c.Nick), bal)
	return nil
}

type TopupCmd struct {
	Nick   string `required:"" help:"Player nickname."`
	Amount int64  `required:"" help:"Coins to credit."`
}

func (c *TopupCmd) Run(rc *runContext) error {
	if c.Amount <= 0 {
		return fmt.Errorf("amount must be positive, got %d", c.Amount)
	}
	bal, err := rc.ledger.Topup(rc.ctx, ledger.NormalizeNick(c.Nick), c.Amount)
	if err != nil {
		return fmt.Errorf("topup %s: %w", c.Nick, err)
	}
	fmt.Fprintf(rc.out, "%s: %d\n", ledger.NormalizeNick(c.Nick), bal)
	return nil
}

type LedgerCmd struct {
	Nick  string `required:"" help:"Player nickname."`
	Limit int    `help:"Maximum entries to show." default:"20"`
}

func (c *LedgerCmd) Run(rc *runContext) error {
	entries, err := rc.ledger.History(rc.ctx, c.Nick, c.Limit)
	if err != nil {
		return fmt.Errorf("ledger %s: %w", c.Nick, err)
	}
	tw := tabwriter.NewWriter(rc.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tTYPE\tAMOUNT\tREF")
	for _, e := range entries {
		ref := e.RefType
		if e.RefID != "" {
			ref += ":" + e.RefID
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Type, e.Amount, ref)
	}
	return tw.Flush()
}

type LeaderboardCmd struct {
	Limit int `help:"Number of players to show." default:"10"`
}

func (c *LeaderboardCmd) Run(rc *runContext) error {
	entries, err := rc.ledger.Leaderboard(rc.ctx, c.Limit, 0)
	if err != nil {
		return fmt.Errorf("leaderboard: %w", err)
	}
	tw := tabwriter.NewWriter(rc.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNICK\tPOKER\tCOINS")
	for i, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%+d\t%d\n", i+1, e.Nick, e.PokerNetProfit, e.Coins)
	}
	return tw.Flush()
}

func main() {
	_ = godotenv.Load()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("casino-admin"),
		kong.Description("Manage flappy-casino player accounts."),
		kong.UsageOnError(),
	)

	cfg, err := config.LoadAdmin()
	kctx.FatalIfErrorf(err)
	st, err := store.New(cfg.PostgresDSN)
	kctx.FatalIfErrorf(err)
	defer st.Close()

	rc := &runContext{ctx: context.Background(), ledger: ledger.New(st), out: os.Stdout}
	kctx.FatalIfErrorf(kctx.Run(rc, cfg))
}
