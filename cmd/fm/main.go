package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/formulary-tui/formulary/pkg/binding"
	"github.com/formulary-tui/formulary/pkg/config"
	"github.com/formulary-tui/formulary/pkg/export"
	"github.com/formulary-tui/formulary/pkg/render"
	"github.com/formulary-tui/formulary/pkg/store"
	"github.com/formulary-tui/formulary/pkg/ui"
	"github.com/formulary-tui/formulary/pkg/version"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	storageFlag := flag.String("storage", "", "Storage variant: kv or file (default from config)")
	formulaPath := flag.String("formulas", "", "Formula file path (file storage)")
	templatePath := flag.String("templates", "", "Template library file path (file storage)")
	importFlag := flag.String("import", "", "Import a formula or template JSON file and exit")
	importWizard := flag.Bool("import-wizard", false, "Interactive import: choose file and target")
	exportLatex := flag.String("export-latex", "", "Write the collection as a LaTeX document and exit")
	exportMarkdown := flag.String("export-markdown", "", "Write the collection as Markdown and exit")
	exportJSON := flag.String("export-json", "", "Write the collection as JSON and exit")
	exportSVG := flag.String("export-svg", "", "Write the collection as an SVG sheet and exit")
	flag.Parse()

	if *help {
		fmt.Println("Usage: fm [options]")
		fmt.Println("\nA terminal formula editor with a template library.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("fm %s\n", version.Version)
		os.Exit(0)
	}

	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		// Non-fatal: continue with defaults.
		cfg = config.DefaultConfig()
	}
	if *storageFlag != "" {
		cfg.StorageKind = *storageFlag
	}
	if *formulaPath != "" {
		cfg.FormulaPath = *formulaPath
	}
	if *templatePath != "" {
		cfg.TemplatePath = *templatePath
	}

	formulaStorage, templateStorage, closeStore, err := resolveStorages(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeStore()

	formulas := store.NewFormulas()
	tree := store.NewTree()
	if err := loadFormulas(formulaStorage, formulas); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading formulas: %v\n", err)
		os.Exit(1)
	}
	if err := loadTemplates(templateStorage, tree); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading templates: %v\n", err)
		os.Exit(1)
	}

	// One-shot modes run without the TUI.
	if *importWizard {
		path, target, err := runImportWizard()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Import cancelled: %v\n", err)
			os.Exit(1)
		}
		if target == "templates" {
			if err := importTemplates(path, templateStorage, tree); err != nil {
				fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Imported %d categories from %s\n", len(tree.Categories()), path)
			os.Exit(0)
		}
		if err := importFormulas(path, formulaStorage, formulas); err != nil {
			fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Imported %d formulas from %s\n", formulas.Len(), path)
		os.Exit(0)
	}
	if *importFlag != "" {
		if err := importFormulas(*importFlag, formulaStorage, formulas); err != nil {
			fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Imported %d formulas from %s\n", formulas.Len(), *importFlag)
		os.Exit(0)
	}
	if *exportLatex != "" || *exportMarkdown != "" || *exportJSON != "" || *exportSVG != "" {
		if err := runExports(formulas, *exportLatex, *exportMarkdown, *exportJSON, *exportSVG); err != nil {
			fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "fm needs a terminal; use --export-* or --import for non-interactive use")
		os.Exit(1)
	}

	// Background work reaches the update loop only through this channel.
	events := make(chan tea.Msg, 16)
	post := func(msg tea.Msg) {
		select {
		case events <- msg:
		default: // UI gone or stalled; drop rather than block a timer goroutine
		}
	}

	formulaBinding := binding.New(binding.Config{
		Name:          "formulas",
		Payload:       func() ([]byte, error) { return export.FormulasJSON(formulas.All()) },
		OnError:       func(err error) { post(ui.SaveErrorMsg("formulas", err)) },
		OnSaved:       func(at time.Time) { post(ui.SavedMsg("formulas", at)) },
		DebounceDelay: cfg.DebounceDelay(),
		SaveInterval:  cfg.SaveInterval(),
	})
	templateBinding := binding.New(binding.Config{
		Name:          "templates",
		Payload:       func() ([]byte, error) { return export.LibraryJSON(tree.Library()) },
		OnError:       func(err error) { post(ui.SaveErrorMsg("templates", err)) },
		OnSaved:       func(at time.Time) { post(ui.SavedMsg("templates", at)) },
		DebounceDelay: cfg.DebounceDelay(),
		SaveInterval:  cfg.SaveInterval(),
	})
	formulaBinding.Bind(formulaStorage)
	templateBinding.Bind(templateStorage)
	defer formulaBinding.Unbind()
	defer templateBinding.Unbind()

	// File-backed documents get a change watcher for external edits.
	for name, s := range map[string]binding.Storage{
		"formulas":  formulaStorage,
		"templates": templateStorage,
	} {
		pathed, ok := s.(binding.Pathed)
		if !ok {
			continue
		}
		w, err := binding.NewWatcher(
			pathed.Path(),
			500*time.Millisecond,
			func() { post(ui.ExternalChangeMsg(name)) },
			func(err error) { post(ui.SaveErrorMsg(name, err)) },
		)
		if err != nil {
			continue
		}
		if err := w.Start(); err == nil {
			defer w.Stop()
		}
	}

	worker := render.NewWorker(render.WorkerConfig{})
	worker.Start()
	defer worker.Stop()

	app := ui.NewApp(ui.Options{
		Config:          cfg,
		Tree:            tree,
		Formulas:        formulas,
		FormulaBinding:  formulaBinding,
		TemplateBinding: templateBinding,
		Worker:          worker,
		Events:          events,
	})

	if err := runTUIProgram(app); err != nil {
		fmt.Printf("Error running formulary: %v\n", err)
		os.Exit(1)
	}

	// Best-effort final write; a failure already unbound and reported.
	_ = formulaBinding.SaveNow()
	_ = templateBinding.SaveNow()
	_ = config.Save(cfg)
}

// resolveStorages picks the storage variant once at startup. The closer
// shuts down the shared document store for the kv variant.
func resolveStorages(cfg config.Config) (binding.Storage, binding.Storage, func(), error) {
	switch cfg.StorageKind {
	case "", "kv":
		path := config.StorePath()
		if path == "" {
			return nil, nil, nil, errors.New("cannot determine data directory for the document store")
		}
		kv, err := binding.OpenKVStore(path)
		if err != nil {
			return nil, nil, nil, err
		}
		return kv.Document("formulas"), kv.Document("templates"), func() { kv.Close() }, nil

	case "file":
		if cfg.FormulaPath == "" || cfg.TemplatePath == "" {
			return nil, nil, nil, errors.New("file storage needs --formulas and --templates paths")
		}
		ff, err := binding.NewFileStorage(cfg.FormulaPath)
		if err != nil {
			return nil, nil, nil, err
		}
		tf, err := binding.NewFileStorage(cfg.TemplatePath)
		if err != nil {
			return nil, nil, nil, err
		}
		return ff, tf, func() {}, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown storage kind %q (want kv or file)", cfg.StorageKind)
	}
}

func loadFormulas(s binding.Storage, formulas *store.Formulas) error {
	data, err := s.Read()
	if errors.Is(err, binding.ErrNoDocument) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	entries, err := store.NormalizeFormulas(data)
	if err != nil {
		return err
	}
	formulas.Replace(entries)
	return nil
}

func loadTemplates(s binding.Storage, tree *store.Tree) error {
	data, err := s.Read()
	if errors.Is(err, binding.ErrNoDocument) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	lib, err := store.NormalizeTree(data)
	if err != nil {
		return err
	}
	tree.ReplaceLibrary(lib)
	return nil
}

func importFormulas(path string, s binding.Storage, formulas *store.Formulas) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	entries, err := store.NormalizeFormulas(data)
	if err != nil {
		return err
	}
	formulas.Replace(entries)
	payload, err := export.FormulasJSON(formulas.All())
	if err != nil {
		return err
	}
	return s.Write(payload)
}

func importTemplates(path string, s binding.Storage, tree *store.Tree) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	lib, err := store.NormalizeTree(data)
	if err != nil {
		return err
	}
	tree.ReplaceLibrary(lib)
	payload, err := export.LibraryJSON(tree.Library())
	if err != nil {
		return err
	}
	return s.Write(payload)
}

// runImportWizard asks for a file and a target collection interactively.
func runImportWizard() (path, target string, err error) {
	target = "formulas"
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("What are you importing?").
				Options(
					huh.NewOption("Formula collection", "formulas"),
					huh.NewOption("Template library", "templates"),
				).
				Value(&target),
			huh.NewInput().
				Title("File to import").
				Placeholder("~/formulas.json").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("a file path is required")
					}
					return nil
				}).
				Value(&path),
		),
	)
	if err := form.Run(); err != nil {
		return "", "", err
	}
	return strings.TrimSpace(path), target, nil
}

func runExports(formulas *store.Formulas, latexPath, markdownPath, jsonPath, svgPath string) error {
	entries := formulas.All()
	if latexPath != "" {
		if err := os.WriteFile(latexPath, []byte(export.LaTeXDocument(entries)), 0o644); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", latexPath)
	}
	if markdownPath != "" {
		if err := os.WriteFile(markdownPath, []byte(export.MarkdownDocument(entries)), 0o644); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", markdownPath)
	}
	if jsonPath != "" {
		data, err := export.FormulasJSON(entries)
		if err != nil {
			return err
		}
		if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", jsonPath)
	}
	if svgPath != "" {
		var buf bytes.Buffer
		if err := export.SVGSheet(&buf, entries, "Formulary"); err != nil {
			return err
		}
		if err := os.WriteFile(svgPath, buf.Bytes(), 0o644); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", svgPath)
	}
	return nil
}

func runTUIProgram(app *ui.App) error {
	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set FM_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("FM_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()

				select {
				case <-runDone:
					return
				case <-time.After(2 * time.Second):
				}

				p.Kill()
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}
