package main

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"github.com/chancenmarket/chancen/internal/model"
)

func sortedCommands() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func formatPrice(p float64) string {
	if p == float64(int64(p)) {
		return fmt.Sprintf("€%d", int64(p))
	}
	return fmt.Sprintf("€%.2f", p)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("02.01.2006 15:04")
}

// truncate shortens s to n characters.
func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

func printListings(w io.Writer, listings []model.Listing) error {
	if len(listings) == 0 {
		_, err := fmt.Fprintln(w, "No listings.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tCATEGORY\tSELLER\tVIEWS\tCREATED")
	for _, l := range listings {
		price := formatPrice(l.Price)
		if l.Negotiable {
			price += " VB"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			l.ID, truncate(l.Title, 40), price, l.Category, l.SellerName, l.Views, formatTime(l.CreatedAt))
	}
	return tw.Flush()
}

func printListing(w io.Writer, l *model.Listing, cat model.Category, favorite bool) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "Title:\t%s\n", l.Title)
	fmt.Fprintf(tw, "Price:\t%s\n", formatPrice(l.Price))
	if l.Negotiable {
		fmt.Fprintln(tw, "\tnegotiable")
	}
	categoryName := l.Category
	if cat.NameDE != "" {
		categoryName = cat.NameDE
	}
	fmt.Fprintf(tw, "Category:\t%s\n", categoryName)
	fmt.Fprintf(tw, "Seller:\t%s (%s)\n", l.SellerName, l.SellerID)
	if l.Location != "" {
		fmt.Fprintf(tw, "Location:\t%s\n", l.Location)
	}
	fmt.Fprintf(tw, "Views:\t%d\n", l.Views)
	fmt.Fprintf(tw, "Images:\t%d\n", len(l.Images))
	fmt.Fprintf(tw, "Created:\t%s\n", formatTime(l.CreatedAt))
	if favorite {
		fmt.Fprintln(tw, "Favorite:\tyes")
	}
	for _, f := range cat.Fields {
		if v, ok := l.CategoryFields[f.Name]; ok {
			fmt.Fprintf(tw, "%s:\t%v\n", f.Label, v)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%s\n", l.Description)
	return err
}

func printOffers(w io.Writer, offers []model.Offer) error {
	if len(offers) == 0 {
		_, err := fmt.Fprintln(w, "No offers.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tLISTING\tBUYER\tOFFER\tASKING\tSTATUS\tMESSAGE")
	for _, o := range offers {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			o.ID, truncate(o.ListingTitle, 30), o.BuyerName, formatPrice(o.OfferedPrice),
			formatPrice(o.OriginalPrice), o.Status, truncate(o.Message, 40))
	}
	return tw.Flush()
}

func printConversations(w io.Writer, convs []model.Conversation) error {
	if len(convs) == 0 {
		_, err := fmt.Fprintln(w, "No conversations.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "LISTING\tWITH\tLAST MESSAGE\tTIME\tUNREAD\tCHAT")
	for _, c := range convs {
		unread := ""
		if c.UnreadCount > 0 {
			unread = fmt.Sprint(c.UnreadCount)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\tchancen chat %s %s\n",
			truncate(c.ListingTitle, 30), c.OtherUserName, truncate(c.LastMessage, 40),
			formatTime(c.LastMessageTime), unread, c.ListingID, c.OtherUserID)
	}
	return tw.Flush()
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// readLine prompts on w and reads one line from r.
func readLine(r io.Reader, w io.Writer, prompt string) (string, error) {
	fmt.Fprint(w, prompt)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
