package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"sitesketch/internal/utils"
)

// File is one artifact of an exported site.
type File struct {
	Name    string
	Content []byte
}

// Publisher writes a conversation's site to disk and optionally hands the
// directory to an external publish command.
type Publisher struct {
	outputDir string
	command   string
}

func NewPublisher(outputDir, command string) *Publisher {
	if outputDir == "" {
		outputDir = "published"
	}
	return &Publisher{outputDir: outputDir, command: command}
}

// Publish writes files under <outputDir>/<name> and, when a publish command
// is configured, runs it with that directory as its only argument. It
// returns the location reported by the command, or the directory path.
func (p *Publisher) Publish(ctx context.Context, name string, files []File) (string, error) {
	if len(files) == 0 {
		return "", errors.New("nothing to publish")
	}
	dir := filepath.Join(p.outputDir, filepath.Base(name))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create publish dir: %w", err)
	}

	for _, f := range files {
		path := filepath.Join(dir, filepath.Base(f.Name))
		if err := os.WriteFile(path, f.Content, 0o644); err != nil {
			return "", fmt.Errorf("failed to write file %s: %w", f.Name, err)
		}
		log.Printf("File saved: %s (%s)", path, utils.DetermineContentType(f.Name))
	}

	if p.command == "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return dir, nil
		}
		return abs, nil
	}

	cmd := exec.CommandContext(ctx, p.command, dir)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	log.Printf("Running publish command: %s", cmd.String())
	if err := cmd.Run(); err != nil {
		log.Printf("publish command stderr: %s", stderr.String())
		return "", fmt.Errorf("publish command failed: %w (stderr: %s)", err, stderr.String())
	}

	output := stdout.String()
	location := extractLocation(output)
	if location == "" {
		return "", fmt.Errorf("failed to find a location in publish output: %s", output)
	}
	log.Printf("Published %s to %s", name, location)
	return location, nil
}

// extractLocation finds where the publish command put the site. It accepts
// "Published: <location>", the first http(s) URL, or the last word of the
// output, in that order.
func extractLocation(output string) string {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if loc, ok := strings.CutPrefix(line, "Published: "); ok {
			return strings.TrimSpace(loc)
		}
	}

	for _, field := range strings.Fields(output) {
		if strings.HasPrefix(field, "https://") || strings.HasPrefix(field, "http://") {
			return field
		}
	}

	fields := strings.Fields(output)
	if len(fields) == 0 {
		log.Printf("WARN: publish command printed nothing")
		return ""
	}
	return fields[len(fields)-1]
}
