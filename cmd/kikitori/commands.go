package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/foxseedlab/kikitori/external/console"
	"github.com/foxseedlab/kikitori/internal/audio"
	"github.com/foxseedlab/kikitori/internal/config"
	"github.com/foxseedlab/kikitori/internal/pipeline"
	"github.com/foxseedlab/kikitori/internal/recognition"
	"github.com/foxseedlab/kikitori/internal/translation"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

const (
	stopGrace             = 5 * time.Second
	languageCheckTimeout  = 5 * time.Second
	interactiveMenuPrompt = "Your choice (1-3): "
)

type app struct {
	cfg      *config.Config
	injector do.Injector
	in       *bufio.Reader
	out      io.Writer
}

func newRootCommand(cfg *config.Config, injector do.Injector) *cobra.Command {
	a := &app{cfg: cfg, injector: injector, in: bufio.NewReader(os.Stdin), out: os.Stdout}

	var source, target, model string
	var device int
	root := &cobra.Command{
		Use:           "kikitori",
		Short:         "Offline speech recognition with optional LibreTranslate translation",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			if flags.Changed("source") {
				cfg.SourceLanguage = source
			}
			if flags.Changed("target") {
				cfg.TargetLanguage = target
			}
			if flags.Changed("model") {
				cfg.ModelPath = model
			}
			if flags.Changed("device") {
				cfg.AudioDeviceIndex = device
			}
			return cfg.Validate()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runMenu(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&source, "source", cfg.SourceLanguage, "source language code")
	root.PersistentFlags().StringVar(&target, "target", cfg.TargetLanguage, "target language code")
	root.PersistentFlags().StringVar(&model, "model", cfg.ModelPath, "recognition model directory")
	root.PersistentFlags().IntVar(&device, "device", cfg.AudioDeviceIndex, "input device index, -1 for the default device")

	root.AddCommand(&cobra.Command{
		Use:   "recognize",
		Short: "Transcribe the microphone until Enter is pressed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runSession(cmd.Context(), cfg.TranslationEnabled)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "live",
		Short: "Transcribe the microphone and translate every final segment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runSession(cmd.Context(), true)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "translate [text]",
		Short: "Translate text given as arguments or read line by line from stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTranslate(cmd.Context(), strings.Join(args, " "))
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "devices",
		Short: "List audio input devices",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.listDevices()
		},
	})
	return root
}

func (a *app) runMenu(ctx context.Context) error {
	a.printf("==== SPEECH RECOGNITION AND TRANSLATION ====\n")
	a.printf("1 - Speech recognition only\n")
	a.printf("2 - Text translation only\n")
	a.printf("3 - Speech recognition with real-time translation\n")
	a.printf(interactiveMenuPrompt)

	choice, err := a.readLine()
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	switch choice {
	case "1":
		return a.runSession(ctx, false)
	case "2":
		a.promptLanguages()
		return a.runTranslate(ctx, "")
	case "3":
		a.promptLanguages()
		if err := a.cfg.Validate(); err != nil {
			return err
		}
		return a.runSession(ctx, true)
	default:
		a.printf("Invalid option %q.\n", choice)
		return nil
	}
}

func (a *app) promptLanguages() {
	a.printf("Source language (%s): ", a.cfg.SourceLanguage)
	if v, _ := a.readLine(); v != "" {
		a.cfg.SourceLanguage = v
	}
	a.printf("Target language (%s): ", a.cfg.TargetLanguage)
	if v, _ := a.readLine(); v != "" {
		a.cfg.TargetLanguage = v
	}
}

func (a *app) runSession(ctx context.Context, translate bool) error {
	engine, err := do.Invoke[recognition.Engine](a.injector)
	if err != nil {
		return &pipeline.ConfigurationError{Reason: "recognition engine", Err: err}
	}
	defer func() {
		if err := engine.Close(); err != nil {
			slog.Error("failed to close recognition engine", "error", err)
		}
	}()
	coord, err := do.Invoke[*pipeline.Coordinator](a.injector)
	if err != nil {
		return err
	}

	pcfg := pipeline.ConfigFromAppConfig(a.cfg, translate)
	if pcfg.Translation != nil {
		a.checkLanguagePair(ctx, *pcfg.Translation)
	}
	display := console.NewDisplay(a.out, pcfg.Translation)

	session, err := coord.Start(ctx, pcfg, display)
	if err != nil {
		return err
	}
	display.Println("Recording started. Speak now; press Enter to stop.")

	enter := make(chan struct{})
	go func() {
		_, _ = a.in.ReadString('\n')
		close(enter)
	}()
	select {
	case <-enter:
	case <-ctx.Done():
	case <-session.Done():
	}

	display.Println("Processing final results...")
	stopCtx, cancel := context.WithTimeout(context.Background(), pcfg.DrainTimeout+stopGrace)
	defer cancel()
	stopErr := session.Stop(stopCtx)

	if pairs := session.Pairs(); len(pairs) > 0 {
		a.printf("\n%s\n", pipeline.BuildTranscriptText(session.DeviceName(), pcfg.Translation, session.StartedAt(), time.Now(), a.cfg.TranscriptTimezone, a.cfg.Location(), pairs))
	}
	if err := session.Err(); err != nil {
		return err
	}
	if stopErr != nil {
		slog.Warn("session stopped with errors", "error", stopErr, "session_id", session.ID())
	}
	a.printf("Done.\n")
	return nil
}

func (a *app) runTranslate(ctx context.Context, text string) error {
	tr, err := do.Invoke[translation.Translator](a.injector)
	if err != nil {
		return err
	}
	for _, code := range []string{a.cfg.SourceLanguage, a.cfg.TargetLanguage} {
		if err := config.ValidateLanguageCode(code); err != nil {
			return err
		}
	}
	pair := pipeline.LanguagePair{Source: a.cfg.SourceLanguage, Target: a.cfg.TargetLanguage}
	a.checkLanguagePair(ctx, pair)

	translateOne := func(text string) {
		reqCtx, cancel := context.WithTimeout(ctx, a.cfg.TranslationTimeout)
		defer cancel()
		out, err := tr.Translate(reqCtx, translation.Request{Text: text, SourceLang: pair.Source, TargetLang: pair.Target})
		if err != nil {
			a.printf("Translation error: %v\n", err)
			return
		}
		a.printf("Translated [%s]: %s\n", pair.Target, out)
	}

	if text != "" {
		translateOne(text)
		return nil
	}
	for {
		a.printf("Text to translate (empty line to quit): ")
		line, err := a.readLine()
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		if line == "" || ctx.Err() != nil {
			return nil
		}
		translateOne(line)
	}
}

// checkLanguagePair warns when the service is unreachable or does not list
// the pair. It never blocks a session.
func (a *app) checkLanguagePair(ctx context.Context, pair pipeline.LanguagePair) {
	tr, err := do.Invoke[translation.Translator](a.injector)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, languageCheckTimeout)
	defer cancel()
	langs, err := tr.Languages(ctx)
	if err != nil {
		slog.Warn("translation service health check failed", "error", err, "url", a.cfg.LibreTranslateURL)
		a.printf("Warning: translation service is not reachable at %s\n", a.cfg.LibreTranslateURL)
		return
	}
	if !translation.SupportsPair(langs, pair.Source, pair.Target) {
		a.printf("Warning: translation service does not list %s -> %s\n", pair.Source, pair.Target)
	}
}

func (a *app) listDevices() error {
	opener, err := do.Invoke[audio.Opener](a.injector)
	if err != nil {
		return err
	}
	devices, err := opener.ListInputDevices()
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		a.printf("No input devices found.\n")
		return nil
	}
	for _, d := range devices {
		marker := " "
		if d.IsDefault {
			marker = "*"
		}
		a.printf("%s %3s  %-40s  %d ch  %s Hz\n", marker, strconv.Itoa(d.Index), d.Name, d.MaxInputChannels, strconv.FormatFloat(d.DefaultSampleRate, 'f', 0, 64))
	}
	return nil
}

func (a *app) readLine() (string, error) {
	line, err := a.in.ReadString('\n')
	return strings.TrimSpace(line), err
}

func (a *app) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.out, format, args...)
}
