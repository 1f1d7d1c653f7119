package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/drawersync/internal/common"
	"github.com/dmitrijs2005/drawersync/internal/document"
)

func (a *App) commands() map[string]command {
	return map[string]command{
		"profiles": {usage: "profiles", help: "list profiles (* marks the active one)", run: a.listProfiles},
		"use":      {usage: "use <id>", help: "switch the active profile", minArgs: 1, run: a.useProfile},
		"add":      {usage: "add <id> [name]", help: "create a profile", minArgs: 1, run: a.addProfile},
		"rename":   {usage: "rename <id> <name>", help: "rename a profile", minArgs: 2, run: a.renameProfile},
		"delete":   {usage: "delete <id>", help: "delete a profile and its days", minArgs: 1, run: a.deleteProfile},
		"theme":    {usage: "theme <system|light|dark>", help: "set the active profile theme", minArgs: 1, run: a.setTheme},
		"pref":     {usage: "pref <key> <value>", help: "set a preference (JSON or text)", minArgs: 2, run: a.setPref},
		"state":    {usage: "state [json]", help: "show or replace the drawer state", run: a.state},
		"save":     {usage: "save <date|today> [label]", help: "save the drawer state as a day", minArgs: 1, run: a.saveDay},
		"days":     {usage: "days", help: "list saved days of the active profile", run: a.listDays},
		"show":     {usage: "show <date>", help: "show a saved day", minArgs: 1, run: a.showDay},
		"visit":    {usage: "visit <date|today>", help: "remember the last visited date", minArgs: 1, run: a.visitDay},
		"sync":     {usage: "sync", help: "synchronize with the server now", run: a.sync},
		"status":   {usage: "status", help: "show connection and sync status", run: a.status},
	}
}

func (a *App) statusLine() string {
	mode := "offline"
	if a.syncer.Online() {
		mode = "online"
	}

	p, err := a.profiles.Active(context.Background())
	if err != nil {
		return fmt.Sprintf("(%s)", mode)
	}
	return fmt.Sprintf("(%s %s)", p.ID, mode)
}

func (a *App) listProfiles(ctx context.Context, _ []string) error {
	list, err := a.profiles.List(ctx)
	if err != nil {
		return err
	}
	for _, p := range list {
		mark := " "
		if p.Active {
			mark = "*"
		}
		theme := p.Theme
		if theme == "" {
			theme = "-"
		}
		printlnFn(fmt.Sprintf("%s %-16s %-24s theme=%s updated=%s", mark, p.ID, p.Name, theme, formatMillis(p.UpdatedAt)))
	}
	return nil
}

func (a *App) useProfile(ctx context.Context, args []string) error {
	if err := a.profiles.SetActive(ctx, args[0]); err != nil {
		return err
	}
	printlnFn("Active profile:", args[0])
	return nil
}

func (a *App) addProfile(ctx context.Context, args []string) error {
	if err := a.profiles.Create(ctx, args[0], strings.Join(args[1:], " ")); err != nil {
		return err
	}
	printlnFn("Profile created:", args[0])
	return nil
}

func (a *App) renameProfile(ctx context.Context, args []string) error {
	return a.profiles.Rename(ctx, args[0], strings.Join(args[1:], " "))
}

func (a *App) deleteProfile(ctx context.Context, args []string) error {
	if err := a.profiles.Delete(ctx, args[0]); err != nil {
		return err
	}
	printlnFn("Profile deleted:", args[0])
	return nil
}

func (a *App) setTheme(ctx context.Context, args []string) error {
	return a.profiles.SetTheme(ctx, args[0])
}

func (a *App) setPref(ctx context.Context, args []string) error {
	return a.profiles.SetPref(ctx, args[0], parseValue(strings.Join(args[1:], " ")))
}

func (a *App) state(ctx context.Context, args []string) error {
	if len(args) == 0 {
		p, err := a.profiles.Active(ctx)
		if err != nil {
			return err
		}
		printlnFn(document.StableStringify(p.State))
		return nil
	}

	v, err := parseJSON(strings.Join(args, " "))
	if err != nil {
		return err
	}
	return a.profiles.SaveState(ctx, v)
}

func (a *App) saveDay(ctx context.Context, args []string) error {
	date := resolveDate(args[0])

	p, err := a.profiles.Active(ctx)
	if err != nil {
		return err
	}

	var label *string
	if len(args) > 1 {
		l := strings.Join(args[1:], " ")
		label = &l
	}

	if err := a.days.Save(ctx, p.ID, date, p.State, label); err != nil {
		return err
	}
	printlnFn("Saved", date)
	return nil
}

func (a *App) listDays(ctx context.Context, _ []string) error {
	p, err := a.profiles.Active(ctx)
	if err != nil {
		return err
	}
	days, err := a.days.List(ctx, p.ID)
	if err != nil {
		return err
	}
	if len(days) == 0 {
		printlnFn("No saved days")
		return nil
	}
	for _, d := range days {
		printlnFn(fmt.Sprintf("%s  %-20s saved=%s", d.Date, d.Label, formatMillis(d.SavedAt)))
	}
	return nil
}

func (a *App) showDay(ctx context.Context, args []string) error {
	p, err := a.profiles.Active(ctx)
	if err != nil {
		return err
	}
	rec, err := a.days.Get(ctx, p.ID, resolveDate(args[0]))
	if err != nil {
		return err
	}
	if rec.Label != nil {
		printlnFn("Label:", *rec.Label)
	}
	printlnFn("Saved:", formatMillis(rec.SavedAt))
	printlnFn(document.StableStringify(rec.State))
	return nil
}

func (a *App) visitDay(ctx context.Context, args []string) error {
	p, err := a.profiles.Active(ctx)
	if err != nil {
		return err
	}
	return a.days.SetLastVisited(ctx, p.ID, resolveDate(args[0]))
}

func (a *App) sync(ctx context.Context, _ []string) error {
	if !a.syncer.SyncAllKeys(ctx) {
		return fmt.Errorf("sync incomplete: %w", common.ErrUnavailable)
	}
	printlnFn("Synchronized")
	return nil
}

func (a *App) status(_ context.Context, _ []string) error {
	st := a.syncer.Status()

	mode := "offline"
	if st.Online {
		mode = "online"
	}
	printlnFn("Server:", a.config.ServerURL, "("+mode+")")
	printlnFn("Policy:", st.Policy)

	keys := make([]string, 0, len(st.LastSync))
	for k := range st.LastSync {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		printlnFn(fmt.Sprintf("Last sync %s: %s", k, st.LastSync[k].Format(time.DateTime)))
	}
	if len(st.Pending) > 0 {
		printlnFn("Pending:", strings.Join(st.Pending, ", "))
	}
	if st.LastError != nil {
		printlnFn(fmt.Sprintf("Last error (%s): %v", st.LastErrorAt.Format(time.DateTime), st.LastError))
	}
	return nil
}

// resolveDate maps "today" to the local calendar date.
func resolveDate(s string) string {
	if s == "today" {
		return time.Now().Format(document.DateLayout)
	}
	return s
}

func formatMillis(ms int64) string {
	if ms <= 0 {
		return "never"
	}
	return time.UnixMilli(ms).Format(time.DateTime)
}

// parseJSON accepts any JSON value; "null" is allowed.
func parseJSON(s string) (any, error) {
	s = strings.TrimSpace(s)
	v := document.ParseRaw(s)
	if v == nil && s != "null" {
		return nil, fmt.Errorf("%w: not valid JSON", common.ErrInvalidPayload)
	}
	return v, nil
}

// parseValue reads s as JSON when possible and as plain text otherwise.
func parseValue(s string) any {
	if v, err := parseJSON(s); err == nil {
		return v
	}
	return s
}
