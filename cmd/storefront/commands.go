package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"craft-storefront/internal/app"
	"craft-storefront/internal/models"
	"craft-storefront/pkg/email"
	"craft-storefront/pkg/utils"
)

const thumbWidth = 400

var errSignedOut = errors.New("not signed in, run `storefront login` first")

type cli struct {
	app *app.App
	out io.Writer
}

func (c *cli) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "register":
		if err := needArgs(args, 3, "register <name> <email> <password>"); err != nil {
			return err
		}
		return c.register(ctx, args[0], args[1], args[2])
	case "login":
		if err := needArgs(args, 2, "login <email> <password>"); err != nil {
			return err
		}
		return c.login(ctx, args[0], args[1])
	case "logout":
		return c.app.Auth.Logout(ctx)
	case "whoami":
		return c.whoami()
	case "products":
		page, err := intArg(args, 1, 1)
		if err != nil {
			return err
		}
		f := models.ProductFilter{Page: page}
		if len(args) > 0 {
			f.Category = args[0]
		}
		return c.products(ctx, f)
	case "featured":
		return c.featured(ctx)
	case "product":
		if err := needArgs(args, 1, "product <id>"); err != nil {
			return err
		}
		return c.product(ctx, args[0])
	case "categories":
		return c.categories(ctx)
	case "search":
		if err := needArgs(args, 1, "search <query...>"); err != nil {
			return err
		}
		return c.search(ctx, joinArgs(args))
	case "cart":
		return c.withSession(func() error { return c.cart(ctx) })
	case "add":
		if err := needArgs(args, 2, "add <productId> <size> [qty]"); err != nil {
			return err
		}
		qty, err := intArg(args, 2, 1)
		if err != nil {
			return err
		}
		return c.withSession(func() error { return c.add(ctx, args[0], args[1], qty) })
	case "set-qty":
		if err := needArgs(args, 2, "set-qty <itemId> <qty>"); err != nil {
			return err
		}
		qty, err := intArg(args, 1, 0)
		if err != nil {
			return err
		}
		return c.withSession(func() error { return c.cartOp(c.app.Cart.UpdateQuantity(ctx, args[0], qty)) })
	case "remove":
		if err := needArgs(args, 1, "remove <itemId>"); err != nil {
			return err
		}
		return c.withSession(func() error { return c.cartOp(c.app.Cart.RemoveFromCart(ctx, args[0])) })
	case "clear":
		return c.withSession(func() error { return c.cartOp(c.app.Cart.ClearCart(ctx)) })
	case "checkout":
		if err := needArgs(args, 1, "checkout <cod|card|upi|netbanking>"); err != nil {
			return err
		}
		return c.withSession(func() error { return c.checkout(ctx, args[0]) })
	case "orders":
		page, err := intArg(args, 0, 1)
		if err != nil {
			return err
		}
		return c.withSession(func() error { return c.orders(ctx, page) })
	case "order":
		if err := needArgs(args, 1, "order <id>"); err != nil {
			return err
		}
		return c.withSession(func() error { return c.order(ctx, args[0]) })
	case "cancel":
		if err := needArgs(args, 1, "cancel <id>"); err != nil {
			return err
		}
		return c.withSession(func() error { return c.cancel(ctx, args[0]) })
	case "invoice":
		if err := needArgs(args, 1, "invoice <id>"); err != nil {
			return err
		}
		return c.withSession(func() error { return c.invoice(ctx, args[0]) })
	}
	return usageError(fmt.Sprintf("unknown command %q", cmd))
}

func (c *cli) withSession(fn func() error) error {
	if !c.app.Auth.Snapshot().IsAuthenticated {
		return errSignedOut
	}
	return fn()
}

// failure prefers the message the store shows over the raw error.
func failure(err error, shown string, fields []models.FieldError) error {
	if err == nil {
		return nil
	}
	if len(fields) > 0 {
		msg := shown
		for _, f := range fields {
			msg += fmt.Sprintf("\n  %s: %s", f.Field, f.Message)
		}
		return errors.New(msg)
	}
	if shown != "" {
		return errors.New(shown)
	}
	return err
}

func (c *cli) register(ctx context.Context, name, emailAddr, password string) error {
	err := c.app.Auth.Register(ctx, models.RegisterRequest{Name: name, Email: emailAddr, Password: password})
	st := c.app.Auth.Snapshot()
	if err := failure(err, st.Error, st.FieldErrors); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Welcome, %s!\n", st.User.Name)
	return nil
}

func (c *cli) login(ctx context.Context, emailAddr, password string) error {
	err := c.app.Auth.Login(ctx, models.LoginRequest{Email: emailAddr, Password: password})
	st := c.app.Auth.Snapshot()
	if err := failure(err, st.Error, st.FieldErrors); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Signed in as %s <%s>\n", st.User.Name, st.User.Email)
	return nil
}

func (c *cli) whoami() error {
	st := c.app.Auth.Snapshot()
	if !st.IsAuthenticated {
		fmt.Fprintln(c.out, "Not signed in")
		return nil
	}
	fmt.Fprintf(c.out, "%s <%s>\n", st.User.Name, st.User.Email)
	for _, a := range st.User.Addresses {
		marker := " "
		if a.IsDefault {
			marker = "*"
		}
		fmt.Fprintf(c.out, " %s %-8s %s, %s %s (%s)\n", marker, a.Label, a.Street, a.City, a.PostalCode, a.ID)
	}
	return nil
}

func (c *cli) printProducts(products []models.Product) {
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tRATING")
	for _, p := range products {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f (%d)\n", p.ID, p.Name, p.Category, email.FormatMoney(p.Price), p.Rating, p.NumReviews)
	}
	w.Flush()
}

func (c *cli) products(ctx context.Context, f models.ProductFilter) error {
	err := c.app.Products.FetchProducts(ctx, f)
	st := c.app.Products.Snapshot()
	if err := failure(err, st.Error, nil); err != nil {
		return err
	}
	c.printProducts(st.Products)
	if p := st.Pagination; p != nil {
		fmt.Fprintf(c.out, "page %d of %d, %d products\n", p.Page, p.Pages, p.Total)
	}
	return nil
}

func (c *cli) featured(ctx context.Context) error {
	err := c.app.Products.FetchFeatured(ctx, 0)
	st := c.app.Products.Snapshot()
	if err := failure(err, st.Error, nil); err != nil {
		return err
	}
	c.printProducts(st.Featured)
	return nil
}

func (c *cli) product(ctx context.Context, id string) error {
	err := c.app.Products.FetchProduct(ctx, id)
	st := c.app.Products.Snapshot()
	if err := failure(err, st.Error, nil); err != nil {
		return err
	}
	p := st.Current
	fmt.Fprintf(c.out, "%s\n%s  %s\n\n%s\n\n", p.Name, p.Category, email.FormatMoney(p.Price), p.Description)
	for _, s := range p.Sizes {
		avail := fmt.Sprintf("%d in stock", s.Stock)
		if s.Stock <= 0 {
			avail = "out of stock"
		}
		fmt.Fprintf(c.out, "  %-10s %s\n", s.Label, avail)
	}
	fmt.Fprintf(c.out, "\nImage: %s\n", utils.OptimizeImageURL(p.Image, thumbWidth))
	return nil
}

func (c *cli) categories(ctx context.Context) error {
	err := c.app.Products.FetchCategories(ctx)
	st := c.app.Products.Snapshot()
	if err := failure(err, st.Error, nil); err != nil {
		return err
	}
	for _, cat := range st.Categories {
		fmt.Fprintf(c.out, "%-12s %-12s %d\n", cat.Slug, cat.Name, cat.Count)
	}
	return nil
}

func (c *cli) search(ctx context.Context, query string) error {
	err := c.app.Products.Search(ctx, query)
	st := c.app.Products.Snapshot()
	if err := failure(err, st.Error, nil); err != nil {
		return err
	}
	if len(st.SearchResults) == 0 {
		fmt.Fprintf(c.out, "Nothing matches %q\n", query)
		return nil
	}
	c.printProducts(st.SearchResults)
	return nil
}

func (c *cli) printCart() {
	st := c.app.Cart.Snapshot()
	if len(st.Items) == 0 {
		fmt.Fprintln(c.out, "Your cart is empty")
		return
	}
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ITEM\tPRODUCT\tSIZE\tQTY\tPRICE")
	for _, it := range st.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", it.ID, it.Name, it.Size, it.Quantity, email.FormatMoney(it.Price))
	}
	w.Flush()
	fmt.Fprintf(c.out, "%d items, total %s\n", st.TotalItems, email.FormatMoney(st.TotalPrice))
}

func (c *cli) cart(ctx context.Context) error {
	return c.cartOp(c.app.Cart.FetchCart(ctx))
}

func (c *cli) cartOp(err error) error {
	if err := failure(err, c.app.Cart.Snapshot().Error, nil); err != nil {
		return err
	}
	c.printCart()
	return nil
}

func (c *cli) add(ctx context.Context, productID, size string, qty int) error {
	if err := c.app.Cart.FetchCart(ctx); err != nil {
		return failure(err, c.app.Cart.Snapshot().Error, nil)
	}
	if err := c.app.Products.FetchProduct(ctx, productID); err != nil {
		return failure(err, c.app.Products.Snapshot().Error, nil)
	}
	return c.cartOp(c.app.Cart.AddToCart(ctx, c.app.Products.Snapshot().Current, size, qty))
}

func (c *cli) checkout(ctx context.Context, method string) error {
	user := c.app.Auth.Snapshot().User
	addr, ok := user.DefaultAddress()
	if !ok {
		return errors.New("add a default address before checking out")
	}
	order, err := c.app.Orders.CreateOrder(ctx, models.CreateOrderRequest{
		ShippingAddress: models.ShippingFrom(addr),
		PaymentMethod:   method,
	})
	st := c.app.Orders.Snapshot()
	if err := failure(err, st.Error, st.FieldErrors); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Order %s placed, total %s\n", order.ID, email.FormatMoney(order.TotalPrice))
	return nil
}

func (c *cli) orders(ctx context.Context, page int) error {
	err := c.app.Orders.FetchOrders(ctx, page, 0)
	st := c.app.Orders.Snapshot()
	if err := failure(err, st.Error, nil); err != nil {
		return err
	}
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ORDER\tPLACED\tSTATUS\tPAID\tTOTAL")
	for _, o := range st.Orders {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", o.ID, o.CreatedAt.Format("2006-01-02"), o.Status, o.IsPaid, email.FormatMoney(o.TotalPrice))
	}
	w.Flush()
	return nil
}

func (c *cli) printOrder(o *models.Order) {
	fmt.Fprintf(c.out, "Order %s (%s)\n", o.ID, o.Status)
	for _, it := range o.Items {
		fmt.Fprintf(c.out, "  %d x %s (%s)  %s\n", it.Quantity, it.Name, it.Size, email.FormatMoney(it.Price))
	}
	fmt.Fprintf(c.out, "Items %s  Shipping %s  Tax %s  Total %s\n",
		email.FormatMoney(o.ItemsPrice), email.FormatMoney(o.ShippingPrice),
		email.FormatMoney(o.TaxPrice), email.FormatMoney(o.TotalPrice))
}

func (c *cli) order(ctx context.Context, id string) error {
	err := c.app.Orders.FetchOrder(ctx, id)
	st := c.app.Orders.Snapshot()
	if err := failure(err, st.Error, nil); err != nil {
		return err
	}
	c.printOrder(st.Current)
	return nil
}

func (c *cli) cancel(ctx context.Context, id string) error {
	// Load it first so the local lifecycle check has something to look at.
	if err := c.app.Orders.FetchOrder(ctx, id); err != nil {
		return failure(err, c.app.Orders.Snapshot().Error, nil)
	}
	err := c.app.Orders.CancelOrder(ctx, id)
	st := c.app.Orders.Snapshot()
	if err := failure(err, st.Error, nil); err != nil {
		return err
	}
	c.printOrder(st.Current)
	return nil
}

func (c *cli) invoice(ctx context.Context, id string) error {
	err := c.app.Orders.FetchInvoice(ctx, id)
	st := c.app.Orders.Snapshot()
	if err := failure(err, st.Error, nil); err != nil {
		return err
	}
	inv := st.Invoice
	fmt.Fprintf(c.out, "Invoice %s for order %s, issued %s\n", inv.Number, inv.OrderID, inv.IssuedAt.Format("2 Jan 2006"))
	fmt.Fprintf(c.out, "Billed to %s, %s, %s %s\n\n", inv.BilledTo.FullName, inv.BilledTo.Street, inv.BilledTo.City, inv.BilledTo.PostalCode)
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DESCRIPTION\tQTY\tUNIT\tAMOUNT")
	for _, l := range inv.Lines {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", l.Description, l.Quantity, email.FormatMoney(l.UnitPrice), email.FormatMoney(l.Amount))
	}
	w.Flush()
	fmt.Fprintf(c.out, "\nTotal %s (%s)\n", email.FormatMoney(inv.TotalPrice), inv.PaymentMethod)
	return nil
}
