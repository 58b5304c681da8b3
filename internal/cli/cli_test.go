package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestReporter(t *testing.T) {
	t.Run("NewReporter", func(t *testing.T) {
		r := NewReporter(false)
		if r == nil {
			t.Fatal("NewReporter returned nil")
		}
		if r.quiet {
			t.Error("quiet should be false")
		}

		r = NewReporter(true)
		if !r.quiet {
			t.Error("quiet should be true")
		}
	})

	t.Run("OnProgress", func(t *testing.T) {
		r := NewReporter(true)
		if !r.OnProgress(50) {
			t.Error("OnProgress should return true before cancellation")
		}
		r.Cancel()
		if r.OnProgress(60) {
			t.Error("OnProgress should return false after Cancel")
		}
	})

	t.Run("Cancel", func(t *testing.T) {
		r := NewReporter(false)
		if r.IsCancelled() {
			t.Error("should not be cancelled initially")
		}
		r.Cancel()
		if !r.IsCancelled() {
			t.Error("should be cancelled after Cancel()")
		}
	})
}

func TestReporterOutput(t *testing.T) {
	t.Run("quiet mode suppresses output", func(t *testing.T) {
		r := NewReporter(true)
		r.OnProgress(50)

		old := os.Stderr
		r2, w, _ := os.Pipe()
		os.Stderr = w

		r.Finish()

		w.Close()
		os.Stderr = old

		var buf bytes.Buffer
		buf.ReadFrom(r2)

		if buf.Len() != 0 {
			t.Errorf("quiet mode should not produce output, got: %q", buf.String())
		}
	})

	t.Run("PrintSuccess respects quiet", func(t *testing.T) {
		r := NewReporter(true)

		old := os.Stderr
		r2, w, _ := os.Pipe()
		os.Stderr = w

		r.PrintSuccess("success message")

		w.Close()
		os.Stderr = old

		var buf bytes.Buffer
		buf.ReadFrom(r2)

		if buf.Len() != 0 {
			t.Errorf("quiet mode should suppress success, got: %q", buf.String())
		}
	})

	t.Run("PrintError always outputs", func(t *testing.T) {
		r := NewReporter(true) // Even in quiet mode

		old := os.Stderr
		r2, w, _ := os.Pipe()
		os.Stderr = w

		r.PrintError("error message")

		w.Close()
		os.Stderr = old

		var buf bytes.Buffer
		buf.ReadFrom(r2)

		if !bytes.Contains(buf.Bytes(), []byte("error message")) {
			t.Errorf("PrintError should always output, got: %q", buf.String())
		}
	})
}

func TestCreateValidation(t *testing.T) {
	t.Run("create with --yes writes the identity file", func(t *testing.T) {
		tmpDir := t.TempDir()
		out := filepath.Join(tmpDir, "identity.sqrl")

		createOutput = out
		createPassword = "correct horse battery staple"
		createPasswordStdin = false
		createText = false
		createLog2N = 1
		createPWVerify = 1
		createRescueVerify = 1
		createHintLength = 4
		createQuiet = true
		createYes = true

		if err := runCreate(createCmd, nil); err != nil {
			t.Fatalf("runCreate() error = %v", err)
		}
		if _, err := os.Stat(out); err != nil {
			t.Fatalf("expected %s to exist: %v", out, err)
		}
	})
}

func TestShowValidation(t *testing.T) {
	t.Run("missing input file", func(t *testing.T) {
		showInput = "/nonexistent/identity.sqrl"
		showPassword = ""
		showRevealSecrets = false

		if err := runShow(showCmd, nil); err == nil {
			t.Error("expected error for missing input")
		}
	})
}

func TestGenpass(t *testing.T) {
	t.Run("default options produce a password", func(t *testing.T) {
		genpassLength = 16
		genpassUpper = true
		genpassLower = true
		genpassNumbers = true
		genpassSymbols = false

		if err := runGenpass(genpassCmd, nil); err != nil {
			t.Fatalf("runGenpass() error = %v", err)
		}
	})

	t.Run("no character sets enabled fails", func(t *testing.T) {
		genpassLength = 16
		genpassUpper = false
		genpassLower = false
		genpassNumbers = false
		genpassSymbols = false

		if err := runGenpass(genpassCmd, nil); err == nil {
			t.Error("expected error when no character set is enabled")
		}

		// Reset
		genpassUpper = true
		genpassLower = true
		genpassNumbers = true
	})
}

func TestFormatRescueCode(t *testing.T) {
	got := formatRescueCode("123456789012345678901234")
	want := "1234-5678-9012-3456-7890-1234"
	if got != want {
		t.Errorf("formatRescueCode() = %q; want %q", got, want)
	}
}
