package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gochip8/pkg/asm"
	"gochip8/pkg/cpu"
)

// SourceExtensions are file extensions treated as assembly source.
var SourceExtensions = []string{".asm", ".s", ".8s"}

func GetPathInfo(relPath string) (fullPath string, parentDir string, err error) {
	// Convert to absolute path (resolves ../../ and cleans the path)
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}

	// Get the directory containing the file
	parentDir = filepath.Dir(fullPath)

	return fullPath, parentDir, nil
}

// ReadProgram reads a program image. Files with one of SourceExtensions are
// assembled first. Images larger than the space above the program start
// address are rejected with a *cpu.ProgramLoadError.
func ReadProgram(path string) ([]byte, error) {
	fullPath, _, err := GetPathInfo(path)
	if err != nil {
		return nil, fmt.Errorf("resolving program path: %w", err)
	}

	if isSource(fullPath) {
		return assembleFile(fullPath)
	}

	f, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("opening program file: %w", err)
	}
	defer func() { _ = f.Close() }()

	program, err := io.ReadAll(io.LimitReader(f, int64(cpu.MaxProgramSize)+1))
	if err != nil {
		return nil, &cpu.ProgramLoadError{Size: len(program), Err: err}
	}
	if len(program) > cpu.MaxProgramSize {
		return nil, &cpu.ProgramLoadError{Size: len(program)}
	}
	return program, nil
}

func assembleFile(path string) ([]byte, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading source file: %w", err)
	}
	program, _, err := asm.Assemble(string(source))
	if err != nil {
		return nil, fmt.Errorf("assembling %s: %w", filepath.Base(path), err)
	}
	if len(program) > cpu.MaxProgramSize {
		return nil, &cpu.ProgramLoadError{Size: len(program)}
	}
	return program, nil
}

func isSource(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range SourceExtensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}
