package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/coursemedia/uploads-ms-go/internal/uploader"
)

func main() {
	var (
		server      = flag.String("server", "http://localhost:8080", "base URL of the upload service")
		token       = flag.String("token", os.Getenv("UPLOADER_TOKEN"), "bearer token for the upload service")
		intentID    = flag.String("intent", "", "resume an existing multipart intent instead of creating one")
		mimeType    = flag.String("mime", "", "MIME type of the file (default: guessed from the extension)")
		progressDir = flag.String("progress-dir", "", "directory for progress files (default: user cache dir)")
		workers     = flag.Int("workers", 0, "number of concurrent part uploads")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <file>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
		os.Exit(2)
	}
	filePath := flag.Arg(0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *server, *token, *intentID, *mimeType, *progressDir, *workers, filePath); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Println("🛑 Upload interrupted, progress saved. Rerun with -intent to resume")
			os.Exit(1)
		}
		log.Fatalf("❌  Upload failed: %v", err)
	}
	log.Println("✅  Upload completed")
}

func run(ctx context.Context, server, token, intentID, mimeType, progressDir string, workers int, filePath string) error {
	store, err := uploader.NewFileStore(progressDir)
	if err != nil {
		return err
	}

	client := uploader.NewClient(server, token)
	u := uploader.New(client, store, uploader.Config{Workers: workers})
	u.OnProgress = func(p uploader.ProgressUpdate) {
		log.Printf("uploaded %d/%d bytes (%.1f%%)", p.LoadedBytes, p.TotalBytes, p.Percentage)
	}

	// explicit intent means we are resuming a multipart upload
	if intentID != "" {
		return u.Upload(ctx, intentID, filePath)
	}

	fi, err := os.Stat(filePath)
	if err != nil {
		return err
	}
	if mimeType == "" {
		mimeType = mime.TypeByExtension(filepath.Ext(filePath))
		if mimeType == "" {
			return fmt.Errorf("could not guess MIME type of %s, pass -mime", filePath)
		}
	}

	ticket, err := client.CreateIntent(ctx, uploader.CreateIntentRequest{
		Filename:  filepath.Base(filePath),
		SizeBytes: fi.Size(),
		MimeType:  mimeType,
	})
	if err != nil {
		return err
	}
	log.Printf("created intent #%s (%s mode)", ticket.IntentID, ticket.Mode)

	return u.Run(ctx, ticket, filePath)
}
