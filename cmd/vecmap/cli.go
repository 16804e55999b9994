package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"

	"github.com/fxamacker/cbor/v2"
	"github.com/jrhy/vecmap"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"
)

const (
	formatJSON = "json"
	formatCBOR = "cbor"
)

type document = vecmap.Map[string, interface{}]

func NewCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vecmap",
		Short: "Normalize, inspect and hash key/value documents",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Disable usage printing on errors
			cmd.SilenceUsage = true
			debug, err := cmd.Flags().GetBool("debug")
			if err != nil {
				return err
			}
			level := slog.LevelInfo
			if debug {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
			return nil
		},
	}

	rootCmd.PersistentFlags().Bool("debug", false, "Log decoding details")
	rootCmd.PersistentFlags().StringP("input-format", "i", formatJSON, "Input encoding (json or cbor)")

	normalizeCmd := &cobra.Command{
		Use:   "normalize [FILE]",
		Short: "Sort and de-duplicate a document by key",
		Long:  "Read a JSON object or array of [key, value] pairs, or the CBOR equivalent, and write it back sorted by key with the last value for each key kept.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  normalizeHandler,
	}
	normalizeCmd.Flags().StringP("format", "f", formatJSON, "Output encoding (json or cbor)")

	inspectCmd := &cobra.Command{
		Use:   "inspect [FILE]",
		Short: "List the entries of a document in key order",
		Args:  cobra.MaximumNArgs(1),
		RunE:  inspectHandler,
	}

	hashCmd := &cobra.Command{
		Use:   "hash [FILE]",
		Short: "Print the content hash of a document",
		Args:  cobra.MaximumNArgs(1),
		RunE:  hashHandler,
	}

	rootCmd.AddCommand(normalizeCmd, inspectCmd, hashCmd)
	return rootCmd
}

func readDocument(cmd *cobra.Command, args []string) (*document, error) {
	format, err := cmd.Flags().GetString("input-format")
	if err != nil {
		return nil, err
	}
	var in io.Reader = cmd.InOrStdin()
	source := "stdin"
	if len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, err
		}
		defer f.Close()
		in = f
		source = args[0]
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}
	doc := vecmap.New[string, interface{}]()
	switch format {
	case formatJSON:
		err = json.Unmarshal(data, doc)
	case formatCBOR:
		err = doc.UnmarshalCBORWith(data, documentDecMode)
	default:
		return nil, fmt.Errorf("unknown input format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", source, err)
	}
	slog.Debug("decoded document", "source", source, "format", format, "bytes", len(data), "entries", doc.Len())
	return doc, nil
}

// documentDecMode decodes nested CBOR maps as map[string]interface{} so that
// they re-encode as JSON objects.
var documentDecMode = func() cbor.DecMode {
	dm, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]interface{}(nil)),
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return dm
}()

func normalizeHandler(cmd *cobra.Command, args []string) error {
	doc, err := readDocument(cmd, args)
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	var out []byte
	switch format {
	case formatJSON:
		out, err = json.Marshal(doc)
		if err == nil {
			out = append(out, '\n')
		}
	case formatCBOR:
		out, err = cbor.Marshal(doc)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func inspectHandler(cmd *cobra.Command, args []string) error {
	doc, err := readDocument(cmd, args)
	if err != nil {
		return err
	}

	var data [][]string
	it := doc.Iter()
	for i := 0; ; i++ {
		k, v, ok := it.Next()
		if !ok {
			break
		}
		vb, err := json.Marshal(v)
		if err != nil {
			vb = []byte(fmt.Sprintf("%v", v))
		}
		data = append(data, []string{strconv.Itoa(i), k, string(vb)})
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"POS", "KEY", "VALUE"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()

	return nil
}

func hashHandler(cmd *cobra.Command, args []string) error {
	doc, err := readDocument(cmd, args)
	if err != nil {
		return err
	}
	sum, err := doc.Hash()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(sum[:]))
	return nil
}
