package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/Mayur-HT/Snapshot/internal/cli/api"
)

// Writer is where every printer writes. Tests swap it out.
var Writer io.Writer = os.Stdout

// JSON prints v as indented JSON.
func JSON(v interface{}) {
	enc := json.NewEncoder(Writer)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func GroupTable(groups []api.Group) {
	if len(groups) == 0 {
		fmt.Fprintln(Writer, "No groups found.")
		return
	}

	w := tabwriter.NewWriter(Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tOWNER\tMEMBERS\tCREATED")
	for _, g := range groups {
		owner := g.OwnerID
		if g.Owner != nil {
			owner = g.Owner.Email
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", g.ID, g.Name, owner, len(g.Memberships), RelativeTime(g.CreatedAt))
	}
	w.Flush()
}

func PhotoTable(photos []api.Photo) {
	if len(photos) == 0 {
		fmt.Fprintln(Writer, "No photos found.")
		return
	}

	w := tabwriter.NewWriter(Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSIZE\tOWNER\tUPLOADED")
	for _, p := range photos {
		owner := p.OwnerID
		if p.Owner != nil {
			owner = p.Owner.Email
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.OriginalName, FormatSize(p.Size), owner, RelativeTime(p.CreatedAt))
	}
	w.Flush()
}

func InviteInfo(inv api.Invite) {
	w := tabwriter.NewWriter(Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Link:\t%s\n", inv.InviteURL)
	fmt.Fprintf(w, "Token:\t%s\n", inv.Token)
	if inv.Email != nil {
		fmt.Fprintf(w, "For:\t%s\n", *inv.Email)
	}
	fmt.Fprintf(w, "Expires:\t%s\n", inv.ExpiresAt.Local().Format(time.RFC1123))
	w.Flush()
}

func UserInfo(u api.User) {
	w := tabwriter.NewWriter(Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Email:\t%s\n", u.Email)
	fmt.Fprintf(w, "Name:\t%s\n", u.Name)
	fmt.Fprintf(w, "ID:\t%s\n", u.ID)
	w.Flush()
}

func ActivityTable(entries []api.ActivityEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(Writer, "No activity recorded.")
		return
	}

	w := tabwriter.NewWriter(Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tACTION\tRESOURCE\tIP")
	for _, e := range entries {
		resource := e.ResourceType
		if e.ResourceID != "" {
			resource += " " + e.ResourceID
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", RelativeTime(e.CreatedAt), e.Action, resource, e.IPAddress)
	}
	w.Flush()
}

// FormatSize converts bytes to a human-readable string.
func FormatSize(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

// RelativeTime formats a timestamp relative to now (e.g. "2h ago", "3d ago").
func RelativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}
