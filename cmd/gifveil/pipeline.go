package main

import (
	"crypto/rsa"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/gifveil/gifveil/internal/codec"
	"github.com/gifveil/gifveil/internal/envelope"
	"github.com/gifveil/gifveil/internal/gifio"
	"github.com/gifveil/gifveil/internal/keystore"
	"github.com/gifveil/gifveil/internal/logging"
	"github.com/gifveil/gifveil/internal/ui"
)

// Encrypt pipeline steps
const (
	encStepLoadCover = iota + 1
	encStepRecipient
	encStepSeal
	encStepEmbed
	encStepWrite
)

var encryptSteps = []string{
	"Loading cover GIF",
	"Resolving recipient key",
	"Sealing input",
	"Embedding payload",
	"Writing encoded GIF",
}

// encryptJob describes one encrypt run
type encryptJob struct {
	CoverPath  string
	InputPath  string
	OutputPath string
	Recipient  string
	Depth      codec.BitDepth
	Workers    int
}

// encryptFile seals InputPath for Recipient and hides it in CoverPath.
// dump, if set, receives the frame 0 header region of the result.
func encryptFile(store *keystore.Store, job encryptJob, onStep ui.StepCallback, dump func(*ui.StreamDump)) (map[string]string, error) {
	onStep(encStepLoadCover, "", ui.StepRunning, "")
	cover, err := gifio.Load(job.CoverPath)
	if err != nil {
		onStep(encStepLoadCover, "", ui.StepFailed, "")
		return nil, err
	}
	onStep(encStepLoadCover, "", ui.StepComplete, cover.String())

	onStep(encStepRecipient, "", ui.StepRunning, "")
	pub, err := store.PublicKey(job.Recipient)
	if err != nil {
		onStep(encStepRecipient, "", ui.StepFailed, "")
		return nil, err
	}
	onStep(encStepRecipient, "", ui.StepComplete, job.Recipient)

	onStep(encStepSeal, "", ui.StepRunning, "")
	plaintext, err := os.ReadFile(job.InputPath)
	if err != nil {
		onStep(encStepSeal, "", ui.StepFailed, "")
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	sealed, err := envelope.Seal(plaintext, pub)
	if err != nil {
		onStep(encStepSeal, "", ui.StepFailed, "")
		return nil, err
	}
	onStep(encStepSeal, "", ui.StepComplete, fmt.Sprintf("%d bytes -> %d bytes", len(plaintext), len(sealed)))

	onStep(encStepEmbed, "", ui.StepRunning, "")
	res, err := codec.Embed(cover.Cover(), sealed, codec.EmbedOptions{
		Depth:   job.Depth,
		Workers: job.Workers,
		Logger:  logging.GetLogger(),
	})
	if err != nil {
		onStep(encStepEmbed, "", ui.StepFailed, "")
		return nil, err
	}
	logging.LogLayout("Payload embedded", res.Layout)
	logging.LogRawBytes("Header region", res.Frames[0][:res.Layout.HeaderRegionEnd])
	onStep(encStepEmbed, "", ui.StepComplete,
		fmt.Sprintf("%d of %d frames", res.Layout.FramesNeeded, res.Layout.ContainerFrames))

	onStep(encStepWrite, "", ui.StepRunning, "")
	g, err := cover.WithFrames(res.Frames)
	if err != nil {
		onStep(encStepWrite, "", ui.StepFailed, "")
		return nil, err
	}
	if err := gifio.Save(job.OutputPath, g); err != nil {
		onStep(encStepWrite, "", ui.StepFailed, "")
		return nil, err
	}
	onStep(encStepWrite, "", ui.StepComplete, filepath.Base(job.OutputPath))

	if dump != nil {
		dump(ui.NewStreamDump("Header region (frame 0)", res.Frames[0][:res.Layout.HeaderRegionEnd]))
	}

	return map[string]string{
		"Output":         job.OutputPath,
		"Recipient":      job.Recipient,
		"Payload":        fmt.Sprintf("%d bytes (%d sealed)", len(plaintext), len(sealed)),
		"Bit depth":      fmt.Sprintf("%d", res.Layout.Depth),
		"Frames used":    fmt.Sprintf("%d of %d", res.Layout.FramesNeeded, res.Layout.ContainerFrames),
		"Cover checksum": cover.Checksum.String(),
	}, nil
}

// Decrypt pipeline steps
const (
	decStepAuth = iota + 1
	decStepLoadOriginal
	decStepLoadEncoded
	decStepExtract
	decStepOpen
)

var decryptSteps = []string{
	"Unlocking private key",
	"Loading original GIF",
	"Loading encoded GIF",
	"Extracting payload",
	"Opening envelope",
}

// decryptJob describes one decrypt run
type decryptJob struct {
	User         string
	Passphrase   string
	OriginalPath string
	EncodedPath  string
	OutputPath   string
	Force        bool
	OnMismatch   codec.MismatchFunc
	Workers      int
}

// decryptFile recovers the payload hidden in EncodedPath and writes the
// opened plaintext to OutputPath
func decryptFile(store *keystore.Store, job decryptJob, onStep ui.StepCallback) (map[string]string, error) {
	onStep(decStepAuth, "", ui.StepRunning, "")
	priv, err := store.Authenticate(job.User, job.Passphrase)
	if err != nil {
		onStep(decStepAuth, "", ui.StepFailed, "")
		return nil, err
	}
	onStep(decStepAuth, "", ui.StepComplete, job.User)

	onStep(decStepLoadOriginal, "", ui.StepRunning, "")
	original, err := gifio.Load(job.OriginalPath)
	if err != nil {
		onStep(decStepLoadOriginal, "", ui.StepFailed, "")
		return nil, err
	}
	onStep(decStepLoadOriginal, "", ui.StepComplete, original.String())

	onStep(decStepLoadEncoded, "", ui.StepRunning, "")
	encoded, err := gifio.Load(job.EncodedPath)
	if err != nil {
		onStep(decStepLoadEncoded, "", ui.StepFailed, "")
		return nil, err
	}
	onStep(decStepLoadEncoded, "", ui.StepComplete, encoded.String())

	onStep(decStepExtract, "", ui.StepRunning, "")
	ext, err := codec.Extract(original.Cover(), encoded.Frames, codec.ExtractOptions{
		Force:      job.Force,
		OnMismatch: job.OnMismatch,
		Workers:    job.Workers,
		Logger:     logging.GetLogger(),
	})
	if err != nil {
		onStep(decStepExtract, "", ui.StepFailed, "")
		return nil, err
	}
	if ext.Integrity == codec.IntegrityMismatch {
		logging.Warn("Decoded despite cover checksum mismatch",
			zap.String("embedded", ext.Header.Checksum.String()),
			zap.String("original", original.Checksum.String()),
		)
	}
	onStep(decStepExtract, "", ui.StepComplete, fmt.Sprintf("%d bytes, checksum %s", len(ext.Payload), ext.Integrity))

	onStep(decStepOpen, "", ui.StepRunning, "")
	plaintext, err := openPayload(ext.Payload, priv)
	if err != nil {
		onStep(decStepOpen, "", ui.StepFailed, "")
		return nil, err
	}
	if err := writeOutput(job.OutputPath, plaintext); err != nil {
		onStep(decStepOpen, "", ui.StepFailed, "")
		return nil, err
	}
	onStep(decStepOpen, "", ui.StepComplete, filepath.Base(job.OutputPath))

	return map[string]string{
		"Output":    job.OutputPath,
		"Payload":   fmt.Sprintf("%d bytes", len(plaintext)),
		"Bit depth": fmt.Sprintf("%d", ext.Depth),
		"Checksum":  ext.Integrity.String(),
	}, nil
}

func openPayload(sealed []byte, priv *rsa.PrivateKey) ([]byte, error) {
	plaintext, err := envelope.Open(sealed, priv)
	if err != nil {
		return nil, fmt.Errorf("payload is not sealed for this user or the original GIF is wrong: %w", err)
	}
	return plaintext, nil
}

func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	logging.LogFileEvent("write", path, len(data))
	return nil
}
