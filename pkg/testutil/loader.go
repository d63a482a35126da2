// Package testutil provides utilities for loading shared test data.
package testutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// TestData represents the structure of a shared test data file.
type TestData struct {
	Version     string     `json:"version"`
	TestSuite   string     `json:"test_suite"`
	Description string     `json:"description"`
	TestCases   []TestCase `json:"test_cases"`
}

// TestCase represents a single test case.
type TestCase struct {
	ID          string         `json:"id"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Config      map[string]any `json:"config,omitempty"`
	Input       any            `json:"input"`
	Operations  []any          `json:"operations,omitempty"`
	Expected    any            `json:"expected"`
	Skip        string         `json:"skip,omitempty"`
}

// InputString returns the input as a string, if it is one.
func (tc *TestCase) InputString() (string, bool) {
	s, ok := tc.Input.(string)
	return s, ok
}

// InputMap returns the input as a map, if it is one.
func (tc *TestCase) InputMap() (map[string]any, bool) {
	m, ok := tc.Input.(map[string]any)
	return m, ok
}

// DecodeInput re-encodes the raw input into v.
func (tc *TestCase) DecodeInput(v any) error {
	return remarshal(tc.Input, v)
}

// DecodeExpected re-encodes the raw expected value into v.
func (tc *TestCase) DecodeExpected(v any) error {
	return remarshal(tc.Expected, v)
}

// IsExpectedNull returns true if the expected value is null/nil.
func (tc *TestCase) IsExpectedNull() bool {
	return tc.Expected == nil
}

func remarshal(in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// Loader loads test data from shared JSON files.
type Loader struct {
	testdataDir string
}

// NewLoader creates a new test data loader.
// The testdataDir should be the path to the testdata directory.
func NewLoader(testdataDir string) *Loader {
	return &Loader{testdataDir: testdataDir}
}

// findTestdataDir searches for the testdata directory by walking up from the current directory.
func findTestdataDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}

	for {
		testdataPath := filepath.Join(dir, "testdata")
		if info, err := os.Stat(testdataPath); err == nil && info.IsDir() {
			return testdataPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("testdata directory not found")
}

// NewLoaderFromRepo creates a loader that automatically finds the testdata directory.
func NewLoaderFromRepo() (*Loader, error) {
	testdataDir, err := findTestdataDir()
	if err != nil {
		return nil, err
	}
	return NewLoader(testdataDir), nil
}

// Load loads test data from a JSON file.
func (l *Loader) Load(category, testSuite string) (*TestData, error) {
	filePath := filepath.Join(l.testdataDir, category, testSuite+".json")

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("reading test data file %s: %w", filePath, err)
	}

	var testData TestData
	if err := json.Unmarshal(data, &testData); err != nil {
		return nil, fmt.Errorf("parsing test data file %s: %w", filePath, err)
	}

	return &testData, nil
}

// GetTestCases returns all non-skipped test cases.
func (l *Loader) GetTestCases(category, testSuite string) ([]TestCase, error) {
	data, err := l.Load(category, testSuite)
	if err != nil {
		return nil, err
	}

	var cases []TestCase
	for _, tc := range data.TestCases {
		if tc.Skip == "" {
			cases = append(cases, tc)
		}
	}

	return cases, nil
}

// Fixture returns the raw bytes of testdata/fixtures/<name>.
func (l *Loader) Fixture(name string) ([]byte, error) {
	filePath := filepath.Join(l.testdataDir, "fixtures", name)
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("reading fixture %s: %w", filePath, err)
	}
	return data, nil
}

// FixtureJSON decodes testdata/fixtures/<name> into v.
func (l *Loader) FixtureJSON(name string, v any) error {
	data, err := l.Fixture(name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing fixture %s: %w", name, err)
	}
	return nil
}
