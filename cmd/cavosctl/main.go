// Command cavosctl drives the Cavos SDK from the command line. Configuration
// comes from the environment (or a .env file); results print as JSON on
// stdout.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	cavos "github.com/cavos-labs/cavos-go"
	"github.com/cavos-labs/cavos-go/social"
	"github.com/cavos-labs/cavos-go/wallet"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := cavos.ConfigFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("load configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := run(ctx, log, cfg, os.Args[1], os.Args[2:]); err != nil {
		log.Fatal().Err(err).Str("command", os.Args[1]).Msg("command failed")
	}
}

func run(ctx context.Context, log zerolog.Logger, cfg *cavos.Config, command string, args []string) error {
	gateway := wallet.New(cfg.BaseURL)

	switch command {
	case "deploy":
		fs := flag.NewFlagSet("deploy", flag.ExitOnError)
		network := fs.String("network", "sepolia", "target network")
		apiKey := fs.String("api-key", "", "wallet-provider API key")
		fs.Parse(args)
		w, err := gateway.Deploy(ctx, *network, *apiKey)
		if err != nil {
			return err
		}
		return printJSON(w)

	case "execute":
		fs := flag.NewFlagSet("execute", flag.ExitOnError)
		network := fs.String("network", "sepolia", "target network")
		calls := fs.String("calls", "[]", "calls array as JSON")
		address := fs.String("address", "", "wallet address")
		hashedPk := fs.String("hashed-pk", "", "hashed private key")
		apiKey := fs.String("api-key", "", "wallet-provider API key")
		fs.Parse(args)
		out, err := gateway.Execute(ctx, wallet.ExecuteRequest{
			Network:  *network,
			Calls:    json.RawMessage(*calls),
			Address:  *address,
			HashedPk: *hashedPk,
		}, *apiKey)
		if err != nil {
			return err
		}
		return printJSON(out)

	case "counts":
		counts, err := gateway.WalletCounts(ctx)
		if err != nil {
			return err
		}
		return printJSON(counts)

	case "transfers":
		fs := flag.NewFlagSet("transfers", flag.ExitOnError)
		txHash := fs.String("tx", "", "transaction hash")
		network := fs.String("network", "", "network, defaults to mainnet")
		fs.Parse(args)
		out, err := gateway.TransactionTransfers(ctx, *txHash, *network)
		if err != nil {
			return err
		}
		return printJSON(out)

	case "format":
		fs := flag.NewFlagSet("format", flag.ExitOnError)
		amount := fs.String("amount", "", "decimal amount")
		decimals := fs.Int("decimals", 18, "token decimals")
		fs.Parse(args)
		u, err := gateway.FormatAmount(ctx, *amount, *decimals)
		if err != nil {
			return err
		}
		return printJSON(u)

	case "delete-user":
		fs := flag.NewFlagSet("delete-user", flag.ExitOnError)
		userID := fs.String("user", "", "user id")
		orgSecret := fs.String("org-secret", "", "organization secret")
		fs.Parse(args)
		out, err := gateway.DeleteUser(ctx, *userID, *orgSecret)
		if err != nil {
			return err
		}
		return printJSON(out)

	case "signup":
		fs := flag.NewFlagSet("signup", flag.ExitOnError)
		email := fs.String("email", "", "user email")
		password := fs.String("password", "", "user password")
		orgID := fs.String("org", "", "organization id")
		network := fs.String("network", "", "target network, defaults to sepolia")
		fs.Parse(args)
		svc, err := cavos.NewService(*cfg, cavos.WithLogger(log))
		if err != nil {
			return err
		}
		res, err := svc.SignUp(ctx, *email, *password, *orgID, *network)
		if err != nil {
			return err
		}
		return printJSON(res)

	case "signin":
		fs := flag.NewFlagSet("signin", flag.ExitOnError)
		email := fs.String("email", "", "user email")
		password := fs.String("password", "", "user password")
		orgID := fs.String("org", "", "organization id")
		fs.Parse(args)
		svc, err := cavos.NewService(*cfg, cavos.WithLogger(log))
		if err != nil {
			return err
		}
		res, err := svc.SignIn(ctx, *email, *password, *orgID)
		if err != nil {
			return err
		}
		return printJSON(res)

	case "refresh":
		fs := flag.NewFlagSet("refresh", flag.ExitOnError)
		token := fs.String("token", "", "refresh token")
		orgSecret := fs.String("org-secret", "", "organization secret")
		fs.Parse(args)
		svc, err := cavos.NewService(*cfg, cavos.WithLogger(log))
		if err != nil {
			return err
		}
		res, err := svc.RefreshToken(ctx, *token, *orgSecret)
		if err != nil {
			return err
		}
		return printJSON(res)

	case "signout":
		fs := flag.NewFlagSet("signout", flag.ExitOnError)
		token := fs.String("token", "", "refresh or access token to revoke")
		fs.Parse(args)
		svc, err := cavos.NewService(*cfg, cavos.WithLogger(log))
		if err != nil {
			return err
		}
		res, err := svc.SignOut(ctx, *token)
		if err != nil {
			return err
		}
		return printJSON(res)

	case "apple-url":
		fs := flag.NewFlagSet("apple-url", flag.ExitOnError)
		network := fs.String("network", "sepolia", "target network")
		orgToken := fs.String("org-token", "", "organization token")
		open := fs.Bool("open", false, "open the URL in the system browser")
		fs.Parse(args)
		flow := &social.Flow{
			Gateway:   gateway,
			OrgToken:  *orgToken,
			Network:   *network,
			Navigator: social.LogNavigator{Log: log},
		}
		if *open {
			flow.Navigator = social.BrowserNavigator{}
		}
		state, err := flow.Start(ctx)
		if err != nil {
			return err
		}
		return printJSON(map[string]string{"state": state})

	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: cavosctl <command> [flags]

commands:
  deploy       deploy a wallet              (-network, -api-key)
  execute      execute a call batch         (-network, -calls, -address, -hashed-pk, -api-key)
  counts       wallet counts per network
  transfers    transfers of a transaction   (-tx, -network)
  format       split an amount into uint256 (-amount, -decimals)
  delete-user  remove a user                (-user, -org-secret)
  signup       register a user              (-email, -password, -org, -network)
  signin       authenticate a user          (-email, -password, -org)
  refresh      refresh session tokens       (-token, -org-secret)
  signout      revoke a session             (-token)
  apple-url    start Apple sign-in          (-network, -org-token, -open)`)
}
