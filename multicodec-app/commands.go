package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/compose-network/multicodec/x/codec"
)

// ioOptions are the input/output flags shared by the framing commands.
type ioOptions struct {
	in       string
	hexIn    bool
	hexOut   bool
	maxInput int64
}

const defaultMaxInput = 64 << 20

func (o *ioOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.in, "in", "-", "input file, - for stdin")
	cmd.Flags().BoolVar(&o.hexIn, "hex-input", false, "input is 0x-prefixed hex instead of raw bytes")
	cmd.Flags().BoolVar(&o.hexOut, "hex", false, "write output as 0x-prefixed hex")
	cmd.Flags().Int64Var(&o.maxInput, "max-input", defaultMaxInput, "maximum input size in bytes")
}

func (o *ioOptions) read(cmd *cobra.Command) ([]byte, error) {
	var r io.Reader = cmd.InOrStdin()
	if o.in != "" && o.in != "-" {
		f, err := os.Open(o.in)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(io.LimitReader(r, o.maxInput+1))
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if int64(len(data)) > o.maxInput {
		return nil, fmt.Errorf("input exceeds %d bytes", o.maxInput)
	}

	if !o.hexIn {
		return data, nil
	}
	s := strings.TrimSpace(string(data))
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	decoded, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("decode hex input: %w", err)
	}
	return decoded, nil
}

func (o *ioOptions) write(cmd *cobra.Command, data []byte) error {
	out := cmd.OutOrStdout()
	if o.hexOut {
		_, err := fmt.Fprintln(out, hexutil.Encode(data))
		return err
	}
	_, err := out.Write(data)
	return err
}

func newFrameCmd(opts *rootOptions) *cobra.Command {
	var iopts ioOptions

	cmd := &cobra.Command{
		Use:   "frame",
		Short: "Prefix input with a codec tag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			c, err := cfg.Codec.DefaultCodec()
			if err != nil {
				return err
			}

			payload, err := iopts.read(cmd)
			if err != nil {
				return err
			}

			framed, err := codec.AddPrefix(c, payload)
			if err != nil {
				return fmt.Errorf("frame payload: %w", err)
			}
			return iopts.write(cmd, framed)
		},
	}

	iopts.bind(cmd)
	cmd.Flags().String("codec", "", "codec name (defaults to codec.default from config)")

	return cmd
}

// inspectReport is printed by the inspect command.
type inspectReport struct {
	Known      bool   `json:"known"`
	Codec      string `json:"codec,omitempty"`
	Code       uint64 `json:"code"`
	CodeHex    string `json:"code_hex"`
	Prefix     string `json:"prefix"`
	PrefixLen  int    `json:"prefix_len"`
	PayloadLen int    `json:"payload_len"`
}

func newInspectCmd() *cobra.Command {
	var iopts ioOptions

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Report the codec prefix of framed input",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			framed, err := iopts.read(cmd)
			if err != nil {
				return err
			}

			code, n, err := codec.ReadCode(framed)
			if err != nil {
				return err
			}

			report := inspectReport{
				Code:       code,
				CodeHex:    hexutil.EncodeUint64(code),
				Prefix:     hexutil.Encode(framed[:n]),
				PrefixLen:  n,
				PayloadLen: len(framed) - n,
			}
			if c, ok := codec.Lookup(code); ok {
				report.Known = true
				report.Codec = c.Name()
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}

	iopts.bind(cmd)

	return cmd
}

func newStripCmd() *cobra.Command {
	var (
		iopts ioOptions
		force bool
	)

	cmd := &cobra.Command{
		Use:   "strip",
		Short: "Remove the codec prefix and write the payload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			framed, err := iopts.read(cmd)
			if err != nil {
				return err
			}

			if !force {
				if _, _, err := codec.Split(framed); err != nil {
					var unknown *codec.UnknownCodecError
					if errors.As(err, &unknown) {
						return fmt.Errorf("%w (use --force to strip anyway)", err)
					}
					return err
				}
			}

			payload, err := codec.RemovePrefix(framed)
			if err != nil {
				return err
			}
			return iopts.write(cmd, payload)
		},
	}

	iopts.bind(cmd)
	cmd.Flags().BoolVar(&force, "force", false, "strip prefixes of unknown codecs")

	return cmd
}

func newCodecsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "codecs",
		Short: "List registered codecs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-8s %-8s %-6s %s\n", "NAME", "CODE", "PREFIX", "CONTENT-TYPE")
			for _, c := range codec.All() {
				fmt.Fprintf(out, "%-8s %-8s %-6d %s\n",
					c.Name(), hexutil.EncodeUint64(c.Code()), codec.PrefixLen(c), c.ContentType())
			}
			return nil
		},
	}
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration helpers",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			out, err := cfg.Dump()
			if err != nil {
				return fmt.Errorf("render config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	})

	return cmd
}
