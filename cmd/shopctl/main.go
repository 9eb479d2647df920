// shopctl is a terminal storefront client: it drives the same session,
// state, and API layers the web client uses, against a running atsea
// backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"atsea/internal/shop/api"
	"atsea/internal/shop/session"
	"atsea/internal/shop/store"
	"atsea/internal/shop/tokens"
)

const usage = `usage: shopctl [-url <base>] <command> [args]

commands:
  register <username> <email> <password>   create an account and sign in
  login <username> <password>              sign in
  logout                                   sign out and clear the session
  refresh                                  rotate the session tokens
  whoami                                   show the current session
  products                                 list the catalog
  cart                                     show the cart
  add <productId> [quantity]               add to the cart
  remove <productId>                       remove a cart line
  clear                                    empty the cart
  checkout                                 place an order from the cart
  containerid                              show which backend replica answered
`

func main() {
	baseURL := flag.String("url", envDefault("ATSEA_URL", "http://localhost:8080"), "backend base URL")
	sessionPath := flag.String("session", defaultSessionPath(), "session file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	log := zap.NewNop()
	if os.Getenv("LOG_LEVEL") == "debug" {
		log, _ = zap.NewDevelopment()
	}

	tok := tokens.NewFileStore(*sessionPath)
	client := api.NewClient(*baseURL, tok)
	sess := session.NewManager(client, tok, log)
	shop := store.New(client, log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := run(ctx, args, sess, shop, client); err != nil {
		fmt.Fprintln(os.Stderr, "shopctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, sess *session.Manager, shop *store.Store, client *api.Client) error {
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "register":
		if len(rest) != 3 {
			return fmt.Errorf("register <username> <email> <password>")
		}
		s, err := sess.Register(ctx, api.RegisterRequest{
			Username: rest[0], Email: rest[1], Password: rest[2],
		})
		if err != nil {
			return err
		}
		fmt.Printf("registered and signed in as %s\n", s.Username)
		return nil

	case "login":
		if len(rest) != 2 {
			return fmt.Errorf("login <username> <password>")
		}
		s, err := sess.Login(ctx, rest[0], rest[1])
		if err != nil {
			return err
		}
		fmt.Printf("signed in as %s\n", s.Username)
		return nil

	case "logout":
		sess.Logout(ctx)
		fmt.Println("signed out")
		return nil

	case "refresh":
		s, err := sess.Refresh(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("session refreshed for %s\n", s.Username)
		return nil

	case "whoami":
		s := sess.Snapshot()
		if !s.IsAuthenticated {
			fmt.Println("not signed in")
			return nil
		}
		fmt.Printf("signed in as %s\n", s.Username)
		return nil

	case "products":
		shop.FetchProducts(ctx)
		st := shop.Snapshot()
		if len(st.Products.VisibleIDs) == 0 {
			fmt.Println("no products")
			return nil
		}
		for _, id := range st.Products.VisibleIDs {
			p := st.Products.ByID[id]
			fmt.Printf("%4d  %-24s %8.2f  %s\n", p.ProductID, p.Name, p.Price, p.Description)
		}
		return nil

	case "cart":
		shop.FetchProducts(ctx)
		if err := shop.FetchCart(ctx); err != nil {
			return err
		}
		st := shop.Snapshot()
		items := st.CartItems()
		if len(items) == 0 {
			fmt.Println("cart is empty")
			return nil
		}
		for _, it := range items {
			fmt.Printf("%4d  %-24s x%d %10.2f\n",
				it.Product.ProductID, it.Product.Name, it.Quantity,
				it.Product.Price*float64(it.Quantity))
		}
		fmt.Printf("total: %.2f\n", st.CartTotal())
		return nil

	case "add":
		if len(rest) < 1 || len(rest) > 2 {
			return fmt.Errorf("add <productId> [quantity]")
		}
		id, err := strconv.ParseInt(rest[0], 10, 64)
		if err != nil {
			return fmt.Errorf("bad product id %q", rest[0])
		}
		qty := 1
		if len(rest) == 2 {
			if qty, err = strconv.Atoi(rest[1]); err != nil {
				return fmt.Errorf("bad quantity %q", rest[1])
			}
		}
		if err := shop.AddToCart(ctx, id, qty); err != nil {
			return err
		}
		fmt.Println("added")
		return nil

	case "remove":
		if len(rest) != 1 {
			return fmt.Errorf("remove <productId>")
		}
		id, err := strconv.ParseInt(rest[0], 10, 64)
		if err != nil {
			return fmt.Errorf("bad product id %q", rest[0])
		}
		if err := shop.RemoveFromCart(ctx, id); err != nil {
			return err
		}
		fmt.Println("removed")
		return nil

	case "clear":
		if err := shop.ClearCartContents(ctx); err != nil {
			return err
		}
		fmt.Println("cart cleared")
		return nil

	case "checkout":
		if err := shop.FetchCart(ctx); err != nil {
			return err
		}
		conf, err := shop.Checkout(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("order %d placed: %s\n", conf.OrderID, conf.Message)
		return nil

	case "containerid":
		cid, err := client.ContainerID(ctx)
		if err != nil {
			return err
		}
		fmt.Println(cid.Hostname)
		return nil

	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".atsea-session.json"
	}
	return filepath.Join(home, ".atsea", "session.json")
}
