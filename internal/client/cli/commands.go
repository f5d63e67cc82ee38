package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/imagedrive/internal/client/syncer"
	"github.com/dmitrijs2005/imagedrive/internal/client/theme"
	"github.com/dmitrijs2005/imagedrive/internal/common"
)

func (a *App) list(ctx context.Context) {
	if err := a.refresh(ctx); err != nil {
		log.Printf("Error: %v", err)
		return
	}

	rows := a.cache.Rows()
	if len(rows) == 0 {
		fmt.Println("No assets.")
		return
	}
	for _, r := range rows {
		fmt.Printf("%s\t%s\t%s\n", r.Key, r.Description, r.Date)
	}
}

// show toggles a row between the collapsed one-line form and the expanded
// detail form, like clicking a card in the original viewer.
func (a *App) show(args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: show <key>")
		return
	}
	a.cache.ToggleExpanded(args[0])
	for _, r := range a.cache.Rows() {
		if r.Key != args[0] {
			continue
		}
		if !r.Expanded {
			fmt.Printf("%s\t%s\t%s\n", r.Key, r.Description, r.Date)
			return
		}
		fmt.Printf("Key: %s\nDescription: %s\nDate: %s\nURL: %s\n", r.Key, r.Description, r.Date, r.SignedURL)
		return
	}
	fmt.Println("Not listed:", args[0])
}

func (a *App) upload(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: upload <path>")
		return
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		log.Printf("Error: %v", err)
		return
	}

	description, err := GetSimpleText(a.reader, "Enter description")
	if err != nil {
		log.Printf("Error: %v", err)
		return
	}

	password, err := GetPassword("Enter delete password")
	if err != nil {
		log.Printf("Error: %v", err)
		return
	}

	key, err := a.syncer.Create(ctx, syncer.CreateRequest{
		Name:        filepath.Base(args[0]),
		Data:        data,
		ContentType: contentTypeByName(args[0]),
		Description: description,
		Password:    password,
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrDuplicateName):
			fmt.Println("A file with this name already exists. Pick another name.")
		case errors.Is(err, common.ErrValidation):
			fmt.Println("Invalid input:", err)
		case errors.Is(err, common.ErrRegistration):
			fmt.Println("Uploaded, but registering the description failed. The asset will show without a description.")
		default:
			log.Printf("Error: %v", err)
		}
		return
	}

	fmt.Println("Uploaded:", key)
	if err := a.refresh(ctx); err != nil {
		log.Printf("Error refreshing listing: %v", err)
	}
}

func (a *App) delete(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: delete <key>")
		return
	}
	key := args[0]

	password, err := GetPassword("Enter delete password")
	if err != nil {
		log.Printf("Error: %v", err)
		return
	}
	a.cache.SetDeletePassword(key, password)

	if err := a.syncer.Delete(ctx, key, password); err != nil {
		switch {
		case errors.Is(err, common.ErrWrongPassword):
			fmt.Println("Wrong password.")
		case errors.Is(err, common.ErrBlobDeleteAfterAuth):
			fmt.Println("The record is gone but the file could not be removed; it will show as degraded until reconciled.")
		default:
			log.Printf("Error: %v", err)
		}
		return
	}

	a.cache.Remove(key)
	fmt.Println("Deleted:", key)
	if err := a.refresh(ctx); err != nil {
		log.Printf("Error refreshing listing: %v", err)
	}
}

func (a *App) download(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: download <key> <out>")
		return
	}

	data, err := a.syncer.Download(ctx, args[0])
	if err != nil {
		log.Printf("Error: %v", err)
		return
	}

	if err := os.WriteFile(args[1], data, 0o644); err != nil {
		log.Printf("Error: %v", err)
		return
	}
	fmt.Printf("Saved %d bytes to %s\n", len(data), args[1])
}

func (a *App) reconcile(ctx context.Context) {
	report, err := a.syncer.Reconcile(ctx)
	if err != nil {
		log.Printf("Error: %v", err)
		return
	}

	if len(report.OrphanBlobs) == 0 && len(report.OrphanRecords) == 0 {
		fmt.Println("Stores are consistent.")
		return
	}
	for _, k := range report.OrphanBlobs {
		fmt.Println("orphaned blob (no metadata):", k)
	}
	for _, k := range report.OrphanRecords {
		fmt.Println("orphaned record (no blob):", k)
	}
}

func (a *App) toggleTheme(ctx context.Context) {
	a.theme = theme.Toggle(a.theme)
	if err := a.themes.Save(a.theme); err != nil {
		a.logger.Warn(ctx, "saving theme preference failed", "error", err.Error())
	}
	fmt.Println("Theme:", a.theme)
}

func contentTypeByName(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}
