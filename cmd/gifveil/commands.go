package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gifveil/gifveil/internal/codec"
	"github.com/gifveil/gifveil/internal/envelope"
	"github.com/gifveil/gifveil/internal/gifio"
	"github.com/gifveil/gifveil/internal/keystore"
	"github.com/gifveil/gifveil/internal/ui"
)

// Command flags
var (
	coverPath    string
	inputPath    string
	outputPath   string
	recipient    string
	bitDepth     int
	userName     string
	originalPath string
	force        bool
	payloadSize  int
)

func init() {
	rootCmd.AddCommand(encryptCmd)
	rootCmd.AddCommand(decryptCmd)
	rootCmd.AddCommand(capacityCmd)
	rootCmd.AddCommand(inspectCmd)

	encryptCmd.Flags().StringVarP(&recipient, "to", "t", "", "Recipient (registered user or imported key)")
	encryptCmd.Flags().StringVarP(&coverPath, "cover", "c", "", "Cover GIF")
	encryptCmd.Flags().StringVarP(&inputPath, "in", "i", "", "File to hide")
	encryptCmd.Flags().StringVarP(&outputPath, "out", "o", "", "Encoded GIF (default: config output_file)")
	encryptCmd.Flags().IntVarP(&bitDepth, "bit-depth", "b", 0, "Bits per pixel sample: 1, 2, 4 or 8 (default: config bit_depth)")
	_ = encryptCmd.MarkFlagRequired("to")
	_ = encryptCmd.MarkFlagRequired("cover")
	_ = encryptCmd.MarkFlagRequired("in")

	decryptCmd.Flags().StringVarP(&userName, "user", "u", "", "User whose private key opens the payload")
	decryptCmd.Flags().StringVar(&originalPath, "original", "", "Original cover GIF")
	decryptCmd.Flags().StringVarP(&inputPath, "in", "i", "", "Encoded GIF")
	decryptCmd.Flags().StringVarP(&outputPath, "out", "o", "", "Recovered file")
	decryptCmd.Flags().BoolVar(&force, "force", false, "Decode even if the original GIF checksum does not match")
	_ = decryptCmd.MarkFlagRequired("user")
	_ = decryptCmd.MarkFlagRequired("original")
	_ = decryptCmd.MarkFlagRequired("in")
	_ = decryptCmd.MarkFlagRequired("out")

	capacityCmd.Flags().IntVarP(&bitDepth, "bit-depth", "b", 0, "Bit depth for --size (default: config bit_depth)")
	capacityCmd.Flags().IntVarP(&payloadSize, "size", "s", -1, "Check whether a file of this many bytes fits")

	inspectCmd.Flags().StringVar(&originalPath, "original", "", "Original cover GIF to check the embedded checksum against")
}

// resolveDepth picks --bit-depth or the configured default
func resolveDepth(flag, preference int) (codec.BitDepth, error) {
	if flag == 0 {
		flag = preference
	}
	return codec.ParseBitDepth(flag)
}

// encryptCmd implements the 'encrypt' command
var encryptCmd = &cobra.Command{
	Use:   "encrypt",
	Short: "Seal a file and hide it in a cover GIF",
	Long: `Seal a file for a recipient and hide it in a cover GIF.

This command will:
  1. Load and checksum the cover GIF
  2. Look up the recipient's public key
  3. Encrypt the input file for the recipient
  4. XOR-embed the encrypted payload into the cover frames
  5. Write the encoded GIF

Lower bit depths change pixels less but carry less. The recipient needs
the encoded GIF and the untouched cover to recover the file.`,
	Example: `  # Hide notes.txt for bob in cat.gif
  gifveil encrypt --to bob --cover cat.gif --in notes.txt

  # Use 4 bits per sample and a custom output path
  gifveil encrypt -t bob -c cat.gif -i notes.txt -b 4 -o out/cipher.gif`,
	Args: cobra.NoArgs,
	RunE: runEncrypt,
}

func runEncrypt(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	reg, store, err := openStore()
	if err != nil {
		return err
	}
	depth, err := resolveDepth(bitDepth, reg.Preferences.BitDepth)
	if err != nil {
		ui.PrintFailure(os.Stdout, "Invalid arguments", err, codec.GetTroubleshootingHint(err))
		return err
	}
	out := outputPath
	if out == "" {
		out = reg.Preferences.OutputFile
	}

	runner := ui.NewRunner(ui.RunnerConfig{
		Title:   "Encrypt",
		Command: "gifveil encrypt",
		Params: map[string]string{
			"Recipient": recipient,
			"Cover":     coverPath,
			"Input":     inputPath,
			"Output":    out,
			"Bit depth": fmt.Sprintf("%d", depth),
		},
		StepNames: encryptSteps,
		Verbose:   verbose,
		Hints: []string{
			"List known recipients: gifveil users",
			"Check cover capacity: gifveil capacity " + coverPath,
		},
	})

	var dump func(*ui.StreamDump)
	if verbose {
		dump = runner.AddDump
	}

	_, err = runner.Run(cmd.Context(), func(onStep ui.StepCallback) (map[string]string, error) {
		return encryptFile(store, encryptJob{
			CoverPath:  coverPath,
			InputPath:  inputPath,
			OutputPath: out,
			Recipient:  recipient,
			Depth:      depth,
			Workers:    workerCount(reg),
		}, onStep, dump)
	})
	return err
}

// decryptCmd implements the 'decrypt' command
var decryptCmd = &cobra.Command{
	Use:   "decrypt",
	Short: "Recover a hidden file using the original cover",
	Long: `Recover a file hidden by 'gifveil encrypt'.

This command will:
  1. Unlock the user's private key with their passphrase
  2. Load the original cover and the encoded GIF
  3. Check the embedded cover checksum and extract the payload
  4. Decrypt the payload and write it out

If the original GIF's checksum differs from the one embedded at encode
time you are asked whether to continue. Without a terminal the command
aborts unless --force is given.`,
	Example: `  gifveil decrypt --user bob --original cat.gif --in cipher.gif --out notes.txt`,
	Args:    cobra.NoArgs,
	RunE:    runDecrypt,
}

func runDecrypt(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	reg, store, err := openStore()
	if err != nil {
		return err
	}
	pass, err := readPassphrase(fmt.Sprintf("Passphrase for %s: ", userName), false)
	if err != nil {
		return err
	}

	// Without a terminal a mismatch aborts unless --force is set
	var onMismatch codec.MismatchFunc
	if term.IsTerminal(int(os.Stdin.Fd())) {
		onMismatch = func(mismatch *codec.CodecError) bool {
			return ui.ConfirmChecksumOverride(os.Stdin, os.Stdout, mismatch)
		}
	}

	runner := ui.NewRunner(ui.RunnerConfig{
		Title:   "Decrypt",
		Command: "gifveil decrypt",
		Params: map[string]string{
			"User":     userName,
			"Original": originalPath,
			"Encoded":  inputPath,
			"Output":   outputPath,
		},
		StepNames: decryptSteps,
		Verbose:   verbose,
		Hints: []string{
			"Make sure the original GIF is the exact file used to encode",
			"The payload can only be opened by the recipient it was sealed for",
		},
	})

	details, err := runner.Run(cmd.Context(), func(onStep ui.StepCallback) (map[string]string, error) {
		return decryptFile(store, decryptJob{
			User:         userName,
			Passphrase:   pass,
			OriginalPath: originalPath,
			EncodedPath:  inputPath,
			OutputPath:   outputPath,
			Force:        force,
			OnMismatch:   onMismatch,
			Workers:      workerCount(reg),
		}, onStep)
	})
	if err != nil {
		return err
	}
	if details["Checksum"] == codec.IntegrityMismatch.String() {
		ui.PrintWarning(os.Stdout, "Decoded with a different original", map[string]string{
			"Original": originalPath,
			"Note":     "The envelope authenticated, so the payload is intact",
		})
	}
	return nil
}

// capacityCmd implements the 'capacity' command
var capacityCmd = &cobra.Command{
	Use:   "capacity <cover.gif>",
	Short: "Show how much a cover GIF can carry",
	Long: `Show the largest payload a cover GIF can carry at each bit depth.

"Sealed" is the raw embedded payload. "File" subtracts the encryption
overhead for a 2048-bit recipient key and is the largest input file
'gifveil encrypt' accepts.`,
	Example: `  gifveil capacity cat.gif

  # Would a 4 KiB file fit at bit depth 1?
  gifveil capacity cat.gif --size 4096 -b 1`,
	Args: cobra.ExactArgs(1),
	RunE: runCapacity,
}

func runCapacity(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	reg, err := loadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	anim, err := gifio.Load(args[0])
	if err != nil {
		return err
	}

	overhead := envelope.OverheadForBits(keystore.KeyBits)
	content, err := renderCapacity(anim, overhead)
	if err != nil {
		return err
	}

	if payloadSize >= 0 {
		depth, err := resolveDepth(bitDepth, reg.Preferences.BitDepth)
		if err != nil {
			return err
		}
		content += "\n" + renderFit(anim, depth, payloadSize, overhead)
	}

	return ui.RenderOnce(os.Stdout, content)
}

func renderCapacity(anim *gifio.Animation, overhead int) (string, error) {
	header := ui.NewHeader("Capacity", "gifveil capacity", map[string]string{
		"Canvas": fmt.Sprintf("%dx%d", anim.Width, anim.Height),
		"Frames": fmt.Sprintf("%d", len(anim.Frames)),
	}).Render()

	keyStyle := ui.ResultKeyStyle
	valueStyle := ui.ResultValueStyle
	rows := []string{keyStyle.Render(fmt.Sprintf("%-10s %14s %14s", "Bit depth", "Sealed", "File"))}
	for _, depth := range []codec.BitDepth{codec.Depth1, codec.Depth2, codec.Depth4, codec.Depth8} {
		max, err := codec.MaxPayload(depth, anim.FrameSize(), len(anim.Frames))
		if err != nil {
			return "", err
		}
		file := max - overhead
		if file < 0 {
			file = 0
		}
		rows = append(rows, valueStyle.Render(fmt.Sprintf("%-10d %14s %14s", depth, formatBytes(max), formatBytes(file))))
	}

	table := lipgloss.NewStyle().PaddingLeft(2).Render(strings.Join(rows, "\n"))
	return header + "\n\n" + table + "\n", nil
}

func renderFit(anim *gifio.Animation, depth codec.BitDepth, size, overhead int) string {
	layout, err := codec.Plan(size+overhead, depth, anim.FrameSize(), len(anim.Frames))
	if err != nil {
		return ui.NewFailureResult("Does not fit", err, codec.GetTroubleshootingHint(err)).Render()
	}
	return ui.NewSuccessResult("Fits", map[string]string{
		"File":        formatBytes(size),
		"Sealed":      formatBytes(size + overhead),
		"Bit depth":   fmt.Sprintf("%d", depth),
		"Frames used": fmt.Sprintf("%d of %d", layout.FramesNeeded, layout.ContainerFrames),
		"Last frame":  fmt.Sprintf("%d of %d samples", layout.LastFrameLength, layout.FrameSize),
	}).Render()
}

func formatBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// inspectCmd implements the 'inspect' command
var inspectCmd = &cobra.Command{
	Use:   "inspect <encoded.gif>",
	Short: "Show the embedded header of an encoded GIF",
	Long: `Decode the header written into frame 0 of an encoded GIF.

Frame 0's header region is written directly rather than XORed, so it can
be read without the original cover. With --original the embedded cover
checksum is compared with the given file.`,
	Example: `  gifveil inspect cipher.gif
  gifveil inspect cipher.gif --original cat.gif -v`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	anim, err := gifio.Load(args[0])
	if err != nil {
		return err
	}

	var original *gifio.Animation
	if originalPath != "" {
		if original, err = gifio.Load(originalPath); err != nil {
			return err
		}
	}

	content, err := renderInspect(anim, original, verbose)
	if err != nil {
		ui.PrintFailure(os.Stdout, "Not an encoded GIF", err, codec.GetTroubleshootingHint(err))
		return err
	}
	return ui.RenderOnce(os.Stdout, content)
}

func renderInspect(anim, original *gifio.Animation, withDump bool) (string, error) {
	if len(anim.Frames) == 0 {
		return "", fmt.Errorf("GIF has no frames")
	}
	depth, header, err := codec.ReadHeader(anim.Frames[0])
	if err != nil {
		return "", err
	}
	layout, err := codec.LayoutFromHeader(header, depth, anim.FrameSize(), len(anim.Frames))
	if err != nil {
		return "", err
	}

	details := map[string]string{
		"Bit depth":         fmt.Sprintf("%d", depth),
		"Frames used":       fmt.Sprintf("%d of %d", header.FrameCount, len(anim.Frames)),
		"Last frame length": fmt.Sprintf("%d samples", header.LastFrameLength),
		"Payload":           formatBytes(layout.PayloadLength),
		"Cover checksum":    header.Checksum.String(),
	}

	var result *ui.Result
	if original != nil {
		integrity := codec.Verify(header.Checksum, original.Checksum)
		details["Original checksum"] = original.Checksum.String()
		details["Integrity"] = integrity.String()
		if integrity == codec.IntegrityMismatch {
			result = ui.NewWarningResult("Original does not match", details)
		}
	}
	if result == nil {
		result = ui.NewSuccessResult("Encoded GIF", details)
	}

	content := result.Render()
	if withDump {
		content += "\n" + ui.NewStreamDump("Header region (frame 0)", anim.Frames[0][:layout.HeaderRegionEnd]).Render()
	}
	return content, nil
}
