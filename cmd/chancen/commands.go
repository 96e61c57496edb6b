package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chancenmarket/chancen/internal/attach"
	"github.com/chancenmarket/chancen/internal/conversation"
	"github.com/chancenmarket/chancen/internal/market"
	"github.com/chancenmarket/chancen/internal/model"
)

// newFlags returns a flag set for a command that reports errors instead of
// exiting.
func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func usageError(name string) error {
	return fmt.Errorf("usage: chancen %s", commands[name].usage)
}

// password returns the -p flag value or prompts for it.
func (a *app) password(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return readLine(a.in, a.out, "Password: ")
}

func cmdRegister(ctx context.Context, a *app, args []string) error {
	fs := newFlags("register")
	var pw string
	fs.StringVar(&pw, "password", "", "")
	fs.StringVar(&pw, "p", "", "")
	if err := fs.Parse(args); err != nil || fs.NArg() != 2 {
		return usageError("register")
	}
	pw, err := a.password(pw)
	if err != nil {
		return err
	}
	if err := model.ValidatePassword(pw); err != nil {
		return err
	}
	if err := a.sess.Register(ctx, fs.Arg(0), fs.Arg(1), pw); err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.out, "Welcome, %s.\n", a.sess.User().Name)
	return err
}

func cmdLogin(ctx context.Context, a *app, args []string) error {
	fs := newFlags("login")
	var pw string
	fs.StringVar(&pw, "password", "", "")
	fs.StringVar(&pw, "p", "", "")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return usageError("login")
	}
	pw, err := a.password(pw)
	if err != nil {
		return err
	}
	if err := a.sess.Login(ctx, fs.Arg(0), pw); err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.out, "Signed in as %s.\n", a.sess.User().Name)
	return err
}

func cmdLogout(ctx context.Context, a *app, _ []string) error {
	if err := a.sess.Logout(ctx); err != nil {
		return err
	}
	_, err := fmt.Fprintln(a.out, "Signed out.")
	return err
}

func cmdWhoami(ctx context.Context, a *app, _ []string) error {
	u, err := a.api.Profile(ctx)
	if err != nil {
		return err
	}
	tw := newTable(a.out)
	fmt.Fprintf(tw, "ID:\t%s\n", u.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", u.Name)
	fmt.Fprintf(tw, "Email:\t%s\n", u.Email)
	fmt.Fprintf(tw, "Role:\t%s\n", u.Role)
	fmt.Fprintf(tw, "Rating:\t%.1f (%d reviews)\n", u.Rating, u.ReviewCount)
	fmt.Fprintf(tw, "Phone:\t%v\n", u.PhoneEnabled)
	fmt.Fprintf(tw, "Member since:\t%s\n", formatTime(u.CreatedAt))
	return tw.Flush()
}

func cmdProfile(ctx context.Context, a *app, args []string) error {
	fs := newFlags("profile")
	name := fs.String("name", "", "")
	image := fs.String("image", "", "")
	phone := fs.String("phone", "", "")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return usageError("profile")
	}

	var upd model.ProfileUpdate
	if *name != "" {
		upd.Name = name
	}
	if *image != "" {
		uri, err := attach.ImageFile(*image)
		if err != nil {
			return err
		}
		upd.ProfileImage = &uri
	}
	if *phone != "" {
		v, err := strconv.ParseBool(*phone)
		if err != nil {
			return fmt.Errorf("-phone: %w", err)
		}
		upd.PhoneEnabled = &v
	}
	if upd == (model.ProfileUpdate{}) {
		return usageError("profile")
	}

	u, err := a.sess.UpdateProfile(ctx, upd)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.out, "Profile saved for %s.\n", u.Name)
	return err
}

func cmdCategories(ctx context.Context, a *app, _ []string) error {
	cats, err := a.categories.Load(ctx)
	if err != nil {
		return err
	}
	tw := newTable(a.out)
	fmt.Fprintln(tw, "ID\tNAME\tFIELDS")
	for _, c := range cats {
		fields := make([]string, 0, len(c.Fields))
		for _, f := range c.Fields {
			fields = append(fields, f.Name)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, c.NameDE, strings.Join(fields, ", "))
	}
	return tw.Flush()
}

func cmdListings(ctx context.Context, a *app, args []string) error {
	fs := newFlags("listings")
	var q model.ListingQuery
	fs.StringVar(&q.Category, "c", "", "")
	fs.StringVar(&q.Search, "q", "", "")
	fs.IntVar(&q.Limit, "n", 0, "")
	if err := fs.Parse(args); err != nil {
		return usageError("listings")
	}
	if fs.NArg() > 0 && q.Search == "" {
		q.Search = strings.Join(fs.Args(), " ")
	}

	feed := market.NewFeed(a.api)
	if err := feed.Load(ctx, q); err != nil {
		return err
	}
	return printListings(a.out, feed.Items())
}

func cmdListing(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return usageError("listing")
	}
	d := market.NewDetail(a.api, a.sess)
	if err := d.Load(ctx, args[0]); err != nil {
		return err
	}
	l := d.Listing()
	cat, _, err := a.categories.Find(ctx, l.Category)
	if err != nil {
		return err
	}
	return printListing(a.out, l, cat, d.Favorite())
}

func cmdCreate(ctx context.Context, a *app, args []string) error {
	fs := newFlags("create")
	var draft model.ListingDraft
	var images, fields stringList
	fs.StringVar(&draft.Title, "title", "", "")
	fs.StringVar(&draft.Description, "desc", "", "")
	fs.Float64Var(&draft.Price, "price", 0, "")
	fs.StringVar(&draft.Category, "c", "", "")
	fs.StringVar(&draft.Location, "location", "", "")
	fs.BoolVar(&draft.Negotiable, "negotiable", false, "")
	fs.Var(&images, "image", "")
	fs.Var(&fields, "f", "")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return usageError("create")
	}

	if draft.Category != "" {
		if _, ok, err := a.categories.Find(ctx, draft.Category); err != nil {
			return err
		} else if !ok {
			return fmt.Errorf("unknown category %q, see 'chancen categories'", draft.Category)
		}
	}
	var err error
	if draft.CategoryFields, err = parseFields(fields); err != nil {
		return err
	}
	for _, path := range images {
		uri, err := attach.ImageFile(path)
		if err != nil {
			return err
		}
		draft.Images = append(draft.Images, uri)
	}

	l, err := market.CreateListing(ctx, a.api, draft)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.out, "Listing published: %s\n", l.ID)
	return err
}

// parseFields turns key=value pairs into category fields.
func parseFields(pairs []string) (map[string]any, error) {
	fields := map[string]any{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid field %q, want key=value", p)
		}
		fields[k] = v
	}
	return fields, nil
}

func cmdMyListings(ctx context.Context, a *app, args []string) error {
	fs := newFlags("my-listings")
	rm := fs.String("rm", "", "")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return usageError("my-listings")
	}
	mine := market.NewMyListings(a.api)
	if *rm != "" {
		if err := mine.Delete(ctx, *rm); err != nil {
			return err
		}
	} else if err := mine.Load(ctx); err != nil {
		return err
	}
	return printListings(a.out, mine.Items())
}

func cmdFavorite(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return usageError("favorite")
	}
	d := market.NewDetail(a.api, a.sess)
	if err := d.Load(ctx, args[0]); err != nil {
		return err
	}
	on, err := d.ToggleFavorite(ctx)
	if err != nil {
		return err
	}
	if on {
		_, err = fmt.Fprintf(a.out, "Added %q to favorites.\n", d.Listing().Title)
	} else {
		_, err = fmt.Fprintf(a.out, "Removed %q from favorites.\n", d.Listing().Title)
	}
	return err
}

func cmdFavorites(ctx context.Context, a *app, args []string) error {
	fs := newFlags("favorites")
	rm := fs.String("rm", "", "")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return usageError("favorites")
	}
	favs := market.NewFavorites(a.api)
	if err := favs.Load(ctx); err != nil {
		return err
	}
	if *rm != "" {
		if err := favs.Remove(ctx, *rm); err != nil {
			return err
		}
	}
	return printListings(a.out, favs.Items())
}

func cmdOffer(ctx context.Context, a *app, args []string) error {
	if len(args) < 2 {
		return usageError("offer")
	}
	price, err := strconv.ParseFloat(strings.TrimPrefix(args[1], "€"), 64)
	if err != nil {
		return fmt.Errorf("invalid price %q", args[1])
	}
	d := market.NewDetail(a.api, a.sess)
	if err := d.Load(ctx, args[0]); err != nil {
		return err
	}
	offer, err := d.MakeOffer(ctx, price, strings.Join(args[2:], " "))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.out, "Offer of %s sent for %q (asking %s).\n",
		formatPrice(offer.OfferedPrice), d.Listing().Title, formatPrice(d.Listing().Price))
	return err
}

func cmdOffers(ctx context.Context, a *app, args []string) error {
	fs := newFlags("offers")
	accept := fs.String("accept", "", "")
	reject := fs.String("reject", "", "")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 || (*accept != "" && *reject != "") {
		return usageError("offers")
	}
	offers := market.NewOffers(a.api)
	var err error
	switch {
	case *accept != "":
		err = offers.Accept(ctx, *accept)
	case *reject != "":
		err = offers.Reject(ctx, *reject)
	default:
		err = offers.Load(ctx)
	}
	if err != nil {
		return err
	}
	return printOffers(a.out, offers.Items())
}

func cmdConversations(ctx context.Context, a *app, _ []string) error {
	in := conversation.NewInbox(a.api)
	if err := in.Load(ctx); err != nil {
		return err
	}
	return printConversations(a.out, in.Conversations())
}

func cmdUnread(ctx context.Context, a *app, _ []string) error {
	n, err := a.api.UnreadCount(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, n)
	return err
}

func cmdSupport(ctx context.Context, a *app, args []string) error {
	if len(args) < 2 {
		return usageError("support")
	}
	ticket, err := market.SubmitSupport(ctx, a.api, args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.out, "Support request %s received.\n", ticket.ID)
	return err
}

func aiFlags(name string, args []string) (title, category, condition string, fields map[string]any, err error) {
	fs := newFlags(name)
	var pairs stringList
	fs.StringVar(&title, "title", "", "")
	fs.StringVar(&category, "c", "", "")
	fs.StringVar(&condition, "condition", "", "")
	fs.Var(&pairs, "f", "")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return "", "", "", nil, usageError(name)
	}
	fields, err = parseFields(pairs)
	return title, category, condition, fields, err
}

func cmdDescribe(ctx context.Context, a *app, args []string) error {
	title, category, _, fields, err := aiFlags("ai-describe", args)
	if err != nil {
		return err
	}
	desc, err := market.GenerateDescription(ctx, a.api, title, category, fields)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, desc)
	return err
}

func cmdPrice(ctx context.Context, a *app, args []string) error {
	title, category, condition, fields, err := aiFlags("ai-price", args)
	if err != nil {
		return err
	}
	price, err := market.SuggestPrice(ctx, a.api, title, category, condition, fields)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, price)
	return err
}

func cmdContact(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return usageError("contact")
	}
	d := market.NewDetail(a.api, a.sess)
	if err := d.Load(ctx, args[0]); err != nil {
		return err
	}
	key, err := d.Contact()
	if errors.Is(err, market.ErrOwnListing) {
		return fmt.Errorf("%w, see 'chancen conversations' for buyers' messages", err)
	}
	if err != nil {
		return err
	}
	return chat(ctx, a, key.ListingID, key.OtherUserID)
}
