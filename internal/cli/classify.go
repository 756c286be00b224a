package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/tariffwatch/internal/model"
)

var (
	classifyName        string
	classifyDescription string
	classifyMaterials   map[string]string
	classifyValue       float64
	classifyOrigin      string
	classifyDestination string
	classifyUse         string
)

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().StringVar(&classifyName, "name", "", "Product name")
	classifyCmd.Flags().StringVar(&classifyDescription, "description", "", "Technical description")
	classifyCmd.Flags().StringToStringVar(&classifyMaterials, "material", nil, "Material fraction, repeatable (e.g. --material steel=0.6)")
	classifyCmd.Flags().Float64Var(&classifyValue, "value", 0, "Declared customs value")
	classifyCmd.Flags().StringVar(&classifyOrigin, "origin", "", "Origin country (ISO-2)")
	classifyCmd.Flags().StringVar(&classifyDestination, "destination", "", "Destination country (ISO-2)")
	classifyCmd.Flags().StringVar(&classifyUse, "use", "", "Intended use")
}

var classifyCmd = &cobra.Command{
	Use:   "classify [product.json|-]",
	Short: "Suggest a tariff classification for a product",
	Long:  "Reads a product description from a JSON file (or stdin with -), or from flags,\nand prints the classification. Low-confidence results open a review ticket.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runClassify,
}

func runClassify(cmd *cobra.Command, args []string) error {
	product, err := productFromArgs(cmd, args)
	if err != nil {
		return err
	}

	b, closeFn, err := openBackend()
	if err != nil {
		return err
	}
	defer closeFn()

	result, err := b.Classify(cmd.Context(), product)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), result)
}

func productFromArgs(cmd *cobra.Command, args []string) (model.ProductSpecs, error) {
	var p model.ProductSpecs
	if len(args) == 0 {
		materials, err := parseMaterials(classifyMaterials)
		if err != nil {
			return p, err
		}
		p = model.ProductSpecs{
			Name:               classifyName,
			Description:        classifyDescription,
			Materials:          materials,
			Value:              classifyValue,
			OriginCountry:      classifyOrigin,
			DestinationCountry: classifyDestination,
			IntendedUse:        classifyUse,
		}
		return p, nil
	}

	var r io.Reader
	if args[0] == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(args[0])
		if err != nil {
			return p, fmt.Errorf("open product file: %w", err)
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return p, fmt.Errorf("%w: decode product: %v", model.ErrInvalidInput, err)
	}
	return p, nil
}

func parseMaterials(raw map[string]string) (map[string]float64, error) {
	materials := make(map[string]float64, len(raw))
	for name, v := range raw {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: material %q: fraction %q is not a number", model.ErrInvalidInput, name, v)
		}
		materials[strings.TrimSpace(name)] = f
	}
	return materials, nil
}

func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
