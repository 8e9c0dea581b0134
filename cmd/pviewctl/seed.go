package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vnykmshr/pviewgroups/internal/eav/sqlite"
	"github.com/vnykmshr/pviewgroups/pkg/catalog"
)

const demoSKU = "TRUCK-001"

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a demo catalog with truck and trailer groups",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := handleSignals(cmd.Context())
		defer cancel()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		setID, err := seedDemo(ctx, a.store)
		if errors.Is(err, catalog.ErrAlreadyExists) {
			return fmt.Errorf("demo catalog already present in %s", a.cfg.DB.Path)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded attribute set %d with product %s\n", setID, demoSKU)
		return nil
	},
}

func seedDemo(ctx context.Context, s *sqlite.Store) (int, error) {
	if err := s.SaveStore(ctx, catalog.Store{ID: 1, Code: "default", Name: "Default Store View"}); err != nil {
		return 0, err
	}

	set := catalog.AttributeSet{Name: "Truck"}
	if err := s.SaveAttributeSet(ctx, &set); err != nil {
		return 0, err
	}

	groups := map[string]int{}
	for i, name := range []string{"General", "pview_Truck", "pview_Trailer-Hitch", "pview_Cab"} {
		g := catalog.AttributeGroup{SetID: set.ID, Name: name, SortOrder: (i + 1) * 10}
		if err := s.SaveGroup(ctx, &g); err != nil {
			return 0, err
		}
		groups[name] = g.ID
	}

	attrs := []struct {
		attr  catalog.Attribute
		group string
		value any
	}{
		{catalog.Attribute{Code: "name", FrontendLabel: "Product Name", IsVisibleOnFront: true}, "General", "Long Haul 500"},
		{catalog.Attribute{Code: "price", FrontendInput: catalog.InputPrice, FrontendLabel: "Price", IsVisibleOnFront: true}, "pview_Truck", "129900"},
		{catalog.Attribute{Code: "axle_count", FrontendInput: catalog.InputSelect, FrontendLabel: "Axles", IsVisibleOnFront: true,
			Options: []catalog.Option{{Value: "2", Label: "Two"}, {Value: "3", Label: "Three"}}}, "pview_Truck", "3"},
		{catalog.Attribute{Code: "meta_keyword", FrontendLabel: "Meta Keywords", IsVisibleOnFront: true}, "pview_Truck", "truck, diesel"},
		{catalog.Attribute{Code: "hitch_rating", FrontendLabel: "Hitch Rating", IsVisibleOnFront: true}, "pview_Trailer-Hitch", "Class V"},
		{catalog.Attribute{Code: "sleeper", FrontendInput: catalog.InputBoolean, FrontendLabel: "Sleeper Cab", IsVisibleOnFront: true}, "pview_Cab", "1"},
		{catalog.Attribute{Code: "internal_note", FrontendLabel: "Internal Note"}, "pview_Cab", "hidden"},
	}

	product := catalog.Product{SKU: demoSKU, AttributeSetID: set.ID, Data: map[string]any{}}
	for i, a := range attrs {
		attr := a.attr
		if err := s.SaveAttribute(ctx, &attr); err != nil {
			return 0, err
		}
		if err := s.AssignAttribute(ctx, &catalog.EntityAttribute{
			SetID:       set.ID,
			GroupID:     groups[a.group],
			AttributeID: attr.ID,
			SortOrder:   i,
		}); err != nil {
			return 0, err
		}
		product.Data[attr.Code] = a.value
	}
	if err := s.SaveProduct(ctx, &product); err != nil {
		return 0, err
	}
	return set.ID, nil
}
