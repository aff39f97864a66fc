package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"basket/internal/cart"
	"basket/internal/client"
	"basket/internal/domain"
)

const (
	tokenFile   = "token"
	pricingFile = "pricing.json"
)

type savedPricing struct {
	Fee       float64 `json:"deliveryFee"`
	FreeAbove float64 `json:"freeDeliveryAbove"`
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "basketctl",
		Usage: "browse the Basket catalog, keep a local cart and check out",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "api", Value: "http://localhost:3000", EnvVars: []string{"BASKET_API"}, Usage: "API base URL"},
			&cli.StringFlag{Name: "dir", Value: defaultDir(), EnvVars: []string{"BASKET_HOME"}, Usage: "where the cart and token are kept"},
		},
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "sign in and remember the token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"BASKET_PASSWORD"}},
				},
				Action: loginAction,
			},
			{
				Name:   "products",
				Usage:  "list the catalog",
				Action: productsAction,
			},
			{
				Name:   "orders",
				Usage:  "list your orders, newest first",
				Action: ordersAction,
			},
			{
				Name:  "cart",
				Usage: "edit the local cart",
				Subcommands: []*cli.Command{
					{Name: "add", Usage: "add one unit of a product", ArgsUsage: "<product-id>", Action: cartAdd},
					{Name: "rm", Usage: "remove a product", ArgsUsage: "<product-id>", Action: cartRemove},
					{Name: "set", Usage: "set a quantity (0 removes)", ArgsUsage: "<product-id> <n>", Action: cartSet},
					{Name: "show", Usage: "show items and totals", Action: cartShow},
					{Name: "clear", Usage: "empty the cart", Action: cartClear},
				},
			},
			{
				Name:  "checkout",
				Usage: "place an order for the cart contents",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "street", Required: true},
					&cli.StringFlag{Name: "city", Required: true},
					&cli.StringFlag{Name: "state", Required: true},
					&cli.StringFlag{Name: "pincode", Required: true},
					&cli.StringFlag{Name: "payment", Value: domain.PaymentCOD},
				},
				Action: checkoutAction,
			},
		},
	}
}

func defaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".basket"
	}
	return filepath.Join(home, ".basket")
}

func apiClient(c *cli.Context) *client.Client {
	tok, err := os.ReadFile(filepath.Join(c.String("dir"), tokenFile))
	if err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("could not read saved token")
	}
	return client.New(c.String("api"), strings.TrimSpace(string(tok)))
}

// refreshPricing stores the server's delivery rule in the state dir. It only
// runs from commands that already talk to the API.
func refreshPricing(c *cli.Context, api *client.Client) {
	p, err := api.Pricing(c.Context)
	if err != nil {
		log.WithError(err).Debug("pricing unavailable, keeping saved rule")
		return
	}
	b, err := json.Marshal(savedPricing{Fee: p.Fee.InexactFloat64(), FreeAbove: p.FreeAbove.InexactFloat64()})
	if err == nil {
		dir := c.String("dir")
		if err = os.MkdirAll(dir, 0o700); err == nil {
			err = os.WriteFile(filepath.Join(dir, pricingFile), b, 0o600)
		}
	}
	if err != nil {
		log.WithError(err).Warn("could not save pricing")
	}
}

func localPricing(dir string) cart.Pricing {
	b, err := os.ReadFile(filepath.Join(dir, pricingFile))
	if err != nil {
		return cart.DefaultPricing()
	}
	var sp savedPricing
	if err := json.Unmarshal(b, &sp); err != nil {
		log.WithError(err).Warn("saved pricing unreadable, using defaults")
		return cart.DefaultPricing()
	}
	return cart.NewPricing(sp.Fee, sp.FreeAbove)
}

// openCart rehydrates the cart from local files only.
func openCart(c *cli.Context) (*cart.Cart, error) {
	dir := c.String("dir")
	return cart.Open(cart.NewFileStore(dir), localPricing(dir))
}

func loginAction(c *cli.Context) error {
	api := apiClient(c)
	tok, err := api.Login(c.Context, c.String("email"), c.String("password"))
	if err != nil {
		return err
	}
	dir := c.String("dir")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(err, "create state dir")
	}
	if err := os.WriteFile(filepath.Join(dir, tokenFile), []byte(tok), 0o600); err != nil {
		return errors.Wrap(err, "save token")
	}
	refreshPricing(c, api)
	log.WithField("email", c.String("email")).Info("logged in")
	fmt.Fprintln(c.App.Writer, "logged in")
	return nil
}

func productsAction(c *cli.Context) error {
	ps, err := apiClient(c).Products(c.Context)
	if err != nil {
		return err
	}
	for _, p := range ps {
		fmt.Fprintf(c.App.Writer, "%-12s %-24s %8.2f /%-5s stock %d\n", p.ID, p.Name, p.Price, p.Unit, p.Stock)
	}
	return nil
}

func ordersAction(c *cli.Context) error {
	orders, err := apiClient(c).Orders(c.Context)
	if err != nil {
		return err
	}
	for _, o := range orders {
		fmt.Fprintf(c.App.Writer, "%s  %s  %-10s %8.2f  %d item(s)\n", o.OrderDate, o.ID, o.Status, o.TotalAmount, len(o.Items))
	}
	return nil
}

func productArg(c *cli.Context) (string, error) {
	id := strings.TrimSpace(c.Args().First())
	if id == "" {
		return "", cli.Exit("missing product id", 2)
	}
	return id, nil
}

func cartAdd(c *cli.Context) error {
	id, err := productArg(c)
	if err != nil {
		return err
	}
	api := apiClient(c)
	p, err := api.Product(c.Context, id)
	if err != nil {
		return err
	}
	refreshPricing(c, api)
	ct, err := openCart(c)
	if err != nil {
		return err
	}
	if err := ct.Add(p); err != nil {
		return err
	}
	return printCart(c, ct)
}

func cartRemove(c *cli.Context) error {
	id, err := productArg(c)
	if err != nil {
		return err
	}
	ct, err := openCart(c)
	if err != nil {
		return err
	}
	if err := ct.Remove(id); err != nil {
		return err
	}
	return printCart(c, ct)
}

func cartSet(c *cli.Context) error {
	id, err := productArg(c)
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(c.Args().Get(1))
	if err != nil {
		return cli.Exit("quantity must be a number", 2)
	}
	ct, err := openCart(c)
	if err != nil {
		return err
	}
	if err := ct.SetQuantity(id, n); err != nil {
		return err
	}
	return printCart(c, ct)
}

func cartShow(c *cli.Context) error {
	ct, err := openCart(c)
	if err != nil {
		return err
	}
	return printCart(c, ct)
}

func cartClear(c *cli.Context) error {
	ct, err := openCart(c)
	if err != nil {
		return err
	}
	if err := ct.Clear(); err != nil {
		return err
	}
	return printCart(c, ct)
}

func printCart(c *cli.Context, ct *cart.Cart) error {
	w := c.App.Writer
	if ct.Empty() {
		fmt.Fprintln(w, "cart is empty")
		return nil
	}
	for _, it := range ct.Items() {
		fmt.Fprintf(w, "%-12s %-24s %3d x %8s = %8s\n", it.ProductID, it.Name, it.Quantity,
			fmtMoney(it.Price), it.LineTotal().StringFixed(2))
	}
	fmt.Fprintf(w, "items %d  subtotal %s  delivery %s  total %s\n",
		ct.Count(), ct.Subtotal().StringFixed(2), ct.DeliveryFee().StringFixed(2), ct.Total().StringFixed(2))
	return nil
}

func fmtMoney(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

// checkoutAction clears the cart only after the server accepted the order.
func checkoutAction(c *cli.Context) error {
	api := apiClient(c)
	if api.Token == "" {
		return cli.Exit("not logged in, run basketctl login first", 1)
	}
	refreshPricing(c, api)
	ct, err := openCart(c)
	if err != nil {
		return err
	}
	if ct.Empty() {
		return cli.Exit("cart is empty", 1)
	}

	sum, err := api.PlaceOrder(c.Context, client.OrderRequest{
		Items: ct.Lines(),
		ShippingAddress: domain.Address{
			Street:  c.String("street"),
			City:    c.String("city"),
			State:   c.String("state"),
			Pincode: c.String("pincode"),
		},
		PaymentMethod: c.String("payment"),
	})
	if err != nil {
		log.WithError(err).Warn("checkout rejected, cart kept")
		return err
	}
	if err := ct.Clear(); err != nil {
		return errors.Wrap(err, "order placed but cart not cleared")
	}
	log.WithFields(log.Fields{"order_id": sum.ID, "total": sum.TotalAmount}).Info("order placed")
	fmt.Fprintf(c.App.Writer, "order %s placed: %.2f (%s)\n", sum.ID, sum.TotalAmount, sum.Status)
	return nil
}
