package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"staticlink-core/internal/bootstrap"
	"staticlink-core/internal/config"
	"staticlink-core/internal/dto"
	"staticlink-core/internal/entity"
	"staticlink-core/pkg/codec"
	"staticlink-core/pkg/database"
	"staticlink-core/pkg/export"
	"staticlink-core/pkg/slpkg"
)

func usage() {
	fmt.Println(`Usage:
  slpkg list                 List stored bundles
  slpkg create <title>       Create an empty bundle
  slpkg pack <id> <out>      Export a bundle as a .slpkg archive
  slpkg unpack <file>        Import a .slpkg archive into the store
  slpkg html <id> <out>      Export a bundle as a standalone HTML document`)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	// 1. Load Configuration
	cfg := config.Load()
	if err := os.MkdirAll(cfg.App.DataDir, 0o755); err != nil {
		log.Fatalf("Unable to create data dir: %v", err)
	}

	// 2. Initialize Database
	gormDB, err := database.NewGormDB(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	ctx := context.Background()

	if err := run(ctx, container, os.Args[1], os.Args[2:]); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, c *bootstrap.Container, cmd string, args []string) error {
	switch cmd {
	case "list":
		bundles, err := c.BundleService.GetAll(ctx)
		if err != nil {
			return err
		}
		for _, b := range bundles {
			state := "active"
			switch {
			case b.IsDeleted:
				state = "deleted"
			case b.IsArchived:
				state = "archived"
			}
			size := codec.EstimateBundleSize(b)
			fmt.Printf("%s  %-30s %-8s %d items, ~%d bytes\n",
				color.CyanString(b.Id.String()), b.Title, state, len(b.Items), size)
		}
		return nil

	case "create":
		if len(args) < 1 {
			usage()
			return fmt.Errorf("create needs a title")
		}
		title := strings.TrimSpace(strings.Join(args, " "))
		id, err := c.BundleService.Create(ctx, &dto.CreateBundleRequest{Title: title})
		if err != nil {
			return err
		}
		color.Green("Created bundle %s", id)
		return nil

	case "pack":
		if len(args) < 2 {
			usage()
			return fmt.Errorf("pack needs a bundle id and an output path")
		}
		bundle, err := lookup(ctx, c, args[0])
		if err != nil {
			return err
		}
		data, err := slpkg.CreatePackage(bundle)
		if err != nil {
			return err
		}
		if err := os.WriteFile(args[1], data, 0o644); err != nil {
			return err
		}
		color.Green("Wrote %s (%d bytes)", args[1], len(data))
		return nil

	case "unpack":
		if len(args) < 1 {
			usage()
			return fmt.Errorf("unpack needs an archive path")
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		parsed, err := slpkg.ReadPackage(data)
		if err != nil {
			return err
		}
		id, err := c.BundleService.Import(ctx, &dto.ImportBundleRequest{
			Title: parsed.Title,
			Items: parsed.Items,
		})
		if err != nil {
			return err
		}
		color.Green("Imported %q as bundle %s", parsed.Title, id)
		return nil

	case "html":
		if len(args) < 2 {
			usage()
			return fmt.Errorf("html needs a bundle id and an output path")
		}
		bundle, err := lookup(ctx, c, args[0])
		if err != nil {
			return err
		}
		doc, err := export.AsDocument(bundle)
		if err != nil {
			return err
		}
		if err := os.WriteFile(args[1], doc, 0o644); err != nil {
			return err
		}
		color.Green("Wrote %s", args[1])
		return nil

	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func lookup(ctx context.Context, c *bootstrap.Container, idStr string) (*entity.Bundle, error) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid bundle id %q", idStr)
	}
	b, err := c.BundleService.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("bundle %s not found", id)
	}
	return b, nil
}
