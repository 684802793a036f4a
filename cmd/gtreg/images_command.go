package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"gtreg/internal/api"
	"gtreg/internal/config"
	"gtreg/internal/images"
	"gtreg/internal/registry"
	"gtreg/internal/store"
)

func newImagesCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "images",
		Short: "Image association utilities",
	}
	cmd.AddCommand(newImagesDuplicateCommand(ctx))
	cmd.AddCommand(newImagesListCommand(ctx))
	return cmd
}

type entityFlags struct {
	kind string
	id   string
}

func (f *entityFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.kind, "entity-type", "", "Entity type (manufacturer, product_line, model, individual_guitar)")
	cmd.Flags().StringVar(&f.id, "entity-id", "", "Entity id")
	_ = cmd.MarkFlagRequired("entity-type")
	_ = cmd.MarkFlagRequired("entity-id")
}

func (f *entityFlags) ref() (registry.EntityRef, error) {
	ref := registry.EntityRef{Kind: registry.EntityKind(strings.TrimSpace(f.kind)), ID: strings.TrimSpace(f.id)}
	if !ref.Kind.CanOwnImages() {
		return registry.EntityRef{}, fmt.Errorf("invalid --entity-type %q", f.kind)
	}
	if ref.ID == "" {
		return registry.EntityRef{}, fmt.Errorf("--entity-id is required")
	}
	return ref, nil
}

func newImagesDuplicateCommand(ctx *commandContext) *cobra.Command {
	var target entityFlags
	var primary bool
	var caption, reason, imageType string

	cmd := &cobra.Command{
		Use:   "duplicate <image-id>",
		Short: "Associate an existing image asset with another entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := target.ref()
			if err != nil {
				return err
			}
			opts := images.Options{
				IsPrimary: primary,
				ImageType: strings.TrimSpace(imageType),
				Reason:    strings.TrimSpace(reason),
			}
			if cmd.Flags().Changed("caption") {
				opts.Caption = &caption
			}
			return ctx.withStore(cmd.Context(), func(cfg *config.Config, st *store.Store, logger *slog.Logger) error {
				id, err := images.NewRegistrar(st, cfg.Resolution.MaxUniquenessRetries, logger).
					RegisterDuplicate(cmd.Context(), strings.TrimSpace(args[0]), ref, opts)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Registered image %s for %s\n", id, ref)
				return nil
			})
		},
	}

	target.register(cmd)
	cmd.Flags().BoolVar(&primary, "primary", false, "Make the duplicate the entity's primary image")
	cmd.Flags().StringVar(&caption, "caption", "", "Caption override")
	cmd.Flags().StringVar(&reason, "reason", "", "Duplicate reason recorded on the new row")
	cmd.Flags().StringVar(&imageType, "image-type", "", "Image type override")
	return cmd
}

func newImagesListCommand(ctx *commandContext) *cobra.Command {
	var owner entityFlags
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List an entity's images in display order",
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := owner.ref()
			if err != nil {
				return err
			}
			return ctx.withStore(cmd.Context(), func(cfg *config.Config, st *store.Store, logger *slog.Logger) error {
				list, err := images.NewRegistrar(st, cfg.Resolution.MaxUniquenessRetries, logger).List(cmd.Context(), ref)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, api.FromImages(list))
				}
				if len(list) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No images for %s\n", ref)
					return nil
				}
				rows := make([][]string, 0, len(list))
				for _, img := range list {
					origin := "-"
					if img.OriginalImageID != nil {
						origin = *img.OriginalImageID
					}
					rows = append(rows, []string{
						strconv.Itoa(img.DisplayOrder),
						img.ID,
						img.Asset.StorageKey,
						img.ImageType,
						yesNo(img.IsPrimary),
						origin,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Order", "Image", "Storage Key", "Type", "Primary", "Duplicate Of"},
					rows,
					[]columnAlignment{alignRight},
				))
				return nil
			})
		},
	}

	owner.register(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit images as JSON")
	return cmd
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
