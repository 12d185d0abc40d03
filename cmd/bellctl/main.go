// Bellctl is a command-line client for the family-bell daemon. It drives the
// same edit-session engine the graphical clients use: drafts are validated
// locally, sent through the sync gateway, and the local view is refreshed
// from the daemon's authoritative snapshot.
//
// Usage:
//
//	bellctl [flags] <command> [command flags]
//
// Commands:
//
//	list                       show every bell and the vacation schedule
//	add                        create a bell
//	edit <id>                  modify an existing bell
//	delete <id>                remove a bell
//	enable <id> | disable <id> flip a bell's enabled flag
//	test                       fire an immediate test announcement
//	vacation                   manage the vacation schedule
//	watch                      follow live changes
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/brewmarsh/family-bell/internal/bell"
	"github.com/brewmarsh/family-bell/internal/gateway"
	"github.com/brewmarsh/family-bell/internal/session"
	"github.com/brewmarsh/family-bell/internal/store"
)

func main() {
	server := flag.String("server", envOr("BELLCTL_SERVER", "http://localhost:8090"), "daemon base URL")
	token := flag.String("token", os.Getenv("BELLCTL_TOKEN"), "bearer token")
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	gw := gateway.NewClient(*server, *token)
	bells := store.New()
	ctl := session.NewController(gw, bells)

	cmd, args := flag.Arg(0), flag.Args()[1:]
	var err error
	switch cmd {
	case "list":
		err = runList(ctx, ctl, bells)
	case "add":
		err = runAdd(ctx, ctl, args)
	case "edit":
		err = runEdit(ctx, ctl, args)
	case "delete":
		err = runDelete(ctx, ctl, args)
	case "enable", "disable":
		err = runSetEnabled(ctx, ctl, cmd == "enable", args)
	case "test":
		err = runTest(ctx, ctl, args)
	case "vacation":
		err = runVacation(ctx, ctl, args)
	case "watch":
		err = runWatch(ctx, gw, ctl, bells)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func runList(ctx context.Context, ctl *session.Controller, bells *store.Store) error {
	if err := ctl.Refresh(ctx); err != nil {
		return err
	}
	printBells(bells)
	printVacation(ctl.Vacation())
	return nil
}

func printBells(bells *store.Store) {
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tNAME\tDAYS\tSPEAKERS\tENABLED\tMESSAGE")
	for _, b := range bells.List() {
		days := make([]string, len(b.Days))
		for i, d := range b.Days {
			days[i] = string(d)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%v\t%s\n",
			b.ID, b.Time, b.Name, strings.Join(days, ","), len(b.Speakers), b.Enabled, b.Message)
	}
	w.Flush()
}

func printVacation(v bell.VacationSchedule) {
	fmt.Printf("\nvacation: enabled=%v\n", v.Enabled)
	for i, r := range v.Ranges {
		fmt.Printf("  [%d] %s .. %s\n", i, r.Start, r.End)
	}
}

// draftFlags are the bell fields settable from the command line.
type draftFlags struct {
	name, clock, message      string
	days, speakers            string
	provider, voice, language string
	soundMedia, soundDevice   string
	clearSound                bool
}

func bindDraftFlags(fs *flag.FlagSet) *draftFlags {
	df := &draftFlags{}
	fs.StringVar(&df.name, "name", "", "display name (defaults to \"Bell <time>\")")
	fs.StringVar(&df.clock, "time", "", "firing time, HH:MM")
	fs.StringVar(&df.message, "message", "", "announcement text")
	fs.StringVar(&df.days, "days", "", "comma-separated days (mon,tue,...)")
	fs.StringVar(&df.speakers, "speakers", "", "comma-separated speaker entity ids")
	fs.StringVar(&df.provider, "provider", "", "TTS provider entity id")
	fs.StringVar(&df.voice, "voice", "", "TTS voice name")
	fs.StringVar(&df.language, "language", "", "TTS language code")
	fs.StringVar(&df.soundMedia, "sound-media", "", "pre-announcement sound media id")
	fs.StringVar(&df.soundDevice, "sound-device", "", "speaker the sound plays on")
	fs.BoolVar(&df.clearSound, "clear-sound", false, "remove the pre-announcement sound")
	return df
}

// apply copies the provided fields onto the controller's draft. Fields left
// blank keep whatever the draft already holds.
func (df *draftFlags) apply(ctl *session.Controller) error {
	if df.name != "" {
		if err := ctl.SetName(df.name); err != nil {
			return err
		}
	}
	if df.clock != "" {
		if err := ctl.SetTime(df.clock); err != nil {
			return err
		}
	}
	if df.message != "" {
		if err := ctl.SetMessage(df.message); err != nil {
			return err
		}
	}
	if df.days != "" {
		for _, day := range strings.Split(df.days, ",") {
			if err := ctl.ToggleDay(bell.Weekday(strings.TrimSpace(day))); err != nil {
				return err
			}
		}
	}
	if df.speakers != "" {
		for _, sp := range strings.Split(df.speakers, ",") {
			if err := ctl.ToggleSpeaker(strings.TrimSpace(sp)); err != nil {
				return err
			}
		}
	}
	if df.provider != "" || df.voice != "" || df.language != "" {
		d, err := ctl.Draft()
		if err != nil {
			return err
		}
		t := d.TTS
		if df.provider != "" {
			t.Provider = df.provider
		}
		if df.voice != "" {
			t.Voice = df.voice
		}
		if df.language != "" {
			t.Language = df.language
		}
		if err := ctl.SetTTS(t); err != nil {
			return err
		}
	}
	if df.clearSound {
		return ctl.ClearSound()
	}
	if df.soundMedia != "" {
		return ctl.SetSound(bell.Sound{MediaID: df.soundMedia, DeviceID: df.soundDevice})
	}
	return nil
}

func runAdd(ctx context.Context, ctl *session.Controller, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	df := bindDraftFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := ctl.Refresh(ctx); err != nil {
		return err
	}
	if err := ctl.BeginCreate(); err != nil {
		return err
	}
	if err := df.apply(ctl); err != nil {
		return err
	}
	saved, err := ctl.Save(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("created %s (%s at %s)\n", saved.ID, saved.Name, saved.Time)
	return nil
}

func runEdit(ctx context.Context, ctl *session.Controller, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("edit: bell id required")
	}
	id := args[0]

	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	df := bindDraftFlags(fs)
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	if err := ctl.Refresh(ctx); err != nil {
		return err
	}
	if err := ctl.BeginEdit(id); err != nil {
		return err
	}
	if err := df.apply(ctl); err != nil {
		return err
	}
	saved, err := ctl.Save(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("saved %s (%s at %s)\n", saved.ID, saved.Name, saved.Time)
	return nil
}

func runDelete(ctx context.Context, ctl *session.Controller, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("delete: bell id required")
	}
	if err := ctl.Refresh(ctx); err != nil {
		return err
	}
	if err := ctl.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", args[0])
	return nil
}

func runSetEnabled(ctx context.Context, ctl *session.Controller, enabled bool, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("bell id required")
	}
	if err := ctl.Refresh(ctx); err != nil {
		return err
	}
	if err := ctl.SetEnabled(ctx, args[0], enabled); err != nil {
		return err
	}
	fmt.Printf("%s enabled=%v\n", args[0], enabled)
	return nil
}

func runTest(ctx context.Context, ctl *session.Controller, args []string) error {
	fs := flag.NewFlagSet("test", flag.ExitOnError)
	df := bindDraftFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if df.message == "" || df.speakers == "" {
		return fmt.Errorf("test: -message and -speakers are required")
	}

	if err := ctl.Refresh(ctx); err != nil {
		return err
	}
	if err := ctl.BeginCreate(); err != nil {
		return err
	}
	if err := df.apply(ctl); err != nil {
		return err
	}
	if err := ctl.Test(ctx); err != nil {
		return err
	}
	// The dispatch happens on a background goroutine; give the request time
	// to leave before the process exits.
	time.Sleep(2 * time.Second)
	fmt.Println("test announcement dispatched")
	return nil
}

func runVacation(ctx context.Context, ctl *session.Controller, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("vacation: subcommand required (on, off, add, remove, show)")
	}
	if err := ctl.Refresh(ctx); err != nil {
		return err
	}

	switch args[0] {
	case "show":
		printVacation(ctl.Vacation())
		return nil
	case "on", "off":
		if err := ctl.SetVacationEnabled(ctx, args[0] == "on"); err != nil {
			return err
		}
		printVacation(ctl.Vacation())
		return nil
	case "add":
		fs := flag.NewFlagSet("vacation add", flag.ExitOnError)
		start := fs.String("start", "", "first suppressed date, YYYY-MM-DD")
		end := fs.String("end", "", "last suppressed date, YYYY-MM-DD")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		from, err := bell.ParseDate(*start)
		if err != nil {
			return err
		}
		to, err := bell.ParseDate(*end)
		if err != nil {
			return err
		}
		if err := ctl.AddVacationRange(ctx, bell.DateRange{Start: from, End: to}); err != nil {
			return err
		}
		printVacation(ctl.Vacation())
		return nil
	case "remove":
		fs := flag.NewFlagSet("vacation remove", flag.ExitOnError)
		index := fs.Int("i", -1, "range index from 'vacation show'")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *index < 0 {
			return fmt.Errorf("vacation remove: -i required")
		}
		if err := ctl.RemoveVacationRange(ctx, *index); err != nil {
			return err
		}
		printVacation(ctl.Vacation())
		return nil
	default:
		return fmt.Errorf("vacation: unknown subcommand %q", args[0])
	}
}

// runWatch follows the daemon's change feed and reprints the schedule after
// every change until interrupted.
func runWatch(ctx context.Context, gw gateway.Gateway, ctl *session.Controller, bells *store.Store) error {
	if err := ctl.Refresh(ctx); err != nil {
		return err
	}
	printBells(bells)

	events, err := gw.Watch(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-events:
			if !ok {
				return fmt.Errorf("watch: event stream closed")
			}
			if err := ctl.Refresh(ctx); err != nil {
				fmt.Fprintln(os.Stderr, "refresh failed:", err)
				continue
			}
			fmt.Println("\n--- schedule changed ---")
			printBells(bells)
		}
	}
}
