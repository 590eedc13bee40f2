package support

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/cucumber/godog"
)

// commandTimeout bounds a single CLI invocation in a scenario.
const commandTimeout = 30 * time.Second

// iRunCommand runs command inside the scenario's temp dir and records the outcome.
// A failing command is not a step failure; the assertions that follow decide.
func (testCtx *TestContext) iRunCommand(command string) error {
	command = testCtx.substituteCommandVariables(command)
	argv := strings.Fields(command)
	if len(argv) == 0 {
		return errors.New("empty command")
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = testCtx.TempDir
	cmd.Env = append(os.Environ(), testCtx.EnvVars...)

	testCtx.LastCommand = command
	testCtx.LastStartTime = time.Now()
	output, err := cmd.CombinedOutput()
	testCtx.LastDuration = time.Since(testCtx.LastStartTime)
	testCtx.LastOutput = string(output)
	testCtx.LastError = err
	testCtx.LastExitCode = exitCode(err)
	return nil
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func (testCtx *TestContext) theCommandShouldSucceed() error {
	if testCtx.LastExitCode != 0 {
		return fmt.Errorf("%q exited with %d: %w\n%s",
			testCtx.LastCommand, testCtx.LastExitCode, testCtx.LastError, testCtx.LastOutput)
	}
	return nil
}

func (testCtx *TestContext) theCommandShouldFail() error {
	if testCtx.LastExitCode == 0 {
		return fmt.Errorf("%q succeeded but should have failed\n%s", testCtx.LastCommand, testCtx.LastOutput)
	}
	return nil
}

func (testCtx *TestContext) theCommandShouldFinishWithin(seconds int) error {
	if limit := time.Duration(seconds) * time.Second; testCtx.LastDuration > limit {
		return fmt.Errorf("%q took %s, limit %s", testCtx.LastCommand, testCtx.LastDuration, limit)
	}
	return nil
}

// theOutputShouldContain verifies the output contains specific text.
func (testCtx *TestContext) theOutputShouldContain(expectedText string) error {
	if !strings.Contains(testCtx.LastOutput, expectedText) {
		return fmt.Errorf("output does not contain '%s'\nActual output: %s", expectedText, testCtx.LastOutput)
	}
	return nil
}

// theOutputShouldNotContain verifies the output lacks specific text.
func (testCtx *TestContext) theOutputShouldNotContain(text string) error {
	if strings.Contains(testCtx.LastOutput, text) {
		return fmt.Errorf("output unexpectedly contains '%s'\nActual output: %s", text, testCtx.LastOutput)
	}
	return nil
}

// jsonPart returns the last JSON document in the output that is not a log entry.
// Log lines go to stderr as JSON too and interleave with the result.
func (testCtx *TestContext) jsonPart() (string, error) {
	output := testCtx.LastOutput
	var last json.RawMessage
	offset := 0
	for _, line := range strings.SplitAfter(output, "\n") {
		start := offset
		offset += len(line)
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
			continue
		}
		var msg json.RawMessage
		if err := json.NewDecoder(strings.NewReader(output[start:])).Decode(&msg); err != nil {
			continue
		}
		if !isLogLine(msg) {
			last = msg
		}
	}
	if last == nil {
		return "", fmt.Errorf("no JSON found in output: %s", output)
	}
	return string(last), nil
}

func isLogLine(msg json.RawMessage) bool {
	var entry map[string]any
	if json.Unmarshal(msg, &entry) != nil {
		return false
	}
	_, hasLevel := entry["level"]
	_, hasMsg := entry["msg"]
	return hasLevel && hasMsg
}

// theOutputShouldBeValidJSON verifies the output holds a JSON result.
func (testCtx *TestContext) theOutputShouldBeValidJSON() error {
	_, err := testCtx.jsonPart()
	return err
}

// lookupJSON resolves a dotted path such as "stats.clamped" in the JSON result.
func (testCtx *TestContext) lookupJSON(field string) (any, error) {
	doc, err := testCtx.jsonPart()
	if err != nil {
		return nil, err
	}
	var val any
	if err := json.Unmarshal([]byte(doc), &val); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	parts := strings.Split(field, ".")
	for i, part := range parts {
		obj, ok := val.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("cannot navigate into non-object at '%s'", strings.Join(parts[:i], "."))
		}
		if val, ok = obj[part]; !ok {
			return nil, fmt.Errorf("field '%s' not found in JSON", strings.Join(parts[:i+1], "."))
		}
	}
	return val, nil
}

func (testCtx *TestContext) theJSONShouldContain(field string) error {
	_, err := testCtx.lookupJSON(field)
	return err
}

func (testCtx *TestContext) theJSONFieldShouldEqual(field string, want int) error {
	val, err := testCtx.lookupJSON(field)
	if err != nil {
		return err
	}
	num, ok := val.(float64)
	if !ok {
		return fmt.Errorf("field '%s' is not a number: %v", field, val)
	}
	if int(num) != want {
		return fmt.Errorf("field '%s' = %v, want %d", field, num, want)
	}
	return nil
}

// theFileShouldBeValidCSV verifies a results file parses as CSV with a header.
func (testCtx *TestContext) theFileShouldBeValidCSV(filename string) error {
	content, err := os.ReadFile(testCtx.path(filename))
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	records, err := csv.NewReader(strings.NewReader(string(content))).ReadAll()
	if err != nil {
		return fmt.Errorf("file %s is not valid CSV: %w", filename, err)
	}
	if len(records) < 2 {
		return fmt.Errorf("CSV file %s has no data rows", filename)
	}
	return nil
}

// theFileShouldExist verifies a file exists.
func (testCtx *TestContext) theFileShouldExist(filename string) error {
	fullPath := testCtx.path(filename)
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", fullPath)
	}
	return nil
}

// theFileShouldNotExist verifies a file was not written.
func (testCtx *TestContext) theFileShouldNotExist(filename string) error {
	fullPath := testCtx.path(filename)
	if _, err := os.Stat(fullPath); err == nil {
		return fmt.Errorf("file should not exist: %s", fullPath)
	}
	return nil
}

// theFileShouldContain verifies a file contains specific content.
func (testCtx *TestContext) theFileShouldContain(filename, expectedContent string) error {
	if err := testCtx.theFileShouldExist(filename); err != nil {
		return err
	}

	fullPath := testCtx.path(filename)
	content, err := os.ReadFile(fullPath) //nolint:gosec // G304: Test file reading with controlled path
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", fullPath, err)
	}

	if !strings.Contains(string(content), expectedContent) {
		return fmt.Errorf("file %s does not contain '%s'\nActual content: %s",
			filename, expectedContent, string(content))
	}

	return nil
}

// theEnvironmentVariableIsSetTo sets an environment variable for later commands.
func (testCtx *TestContext) theEnvironmentVariableIsSetTo(name, value string) error {
	testCtx.AddEnvVar(name, value)
	return nil
}

// RegisterCommonSteps registers all common step definitions.
func (testCtx *TestContext) RegisterCommonSteps(sc *godog.ScenarioContext) {
	testCtx.registerCommandSteps(sc)
	testCtx.registerOutputSteps(sc)
	testCtx.registerFileSteps(sc)
}

// registerCommandSteps registers command execution and result verification steps.
func (testCtx *TestContext) registerCommandSteps(sc *godog.ScenarioContext) {
	sc.Step(`^I run "([^"]*)"$`, testCtx.iRunCommand)
	sc.Step(`^the command should succeed$`, testCtx.theCommandShouldSucceed)
	sc.Step(`^the command should fail$`, testCtx.theCommandShouldFail)
	sc.Step(`^the command should finish within (\d+) seconds$`, testCtx.theCommandShouldFinishWithin)
	sc.Step(`^the environment variable "([^"]*)" is set to "([^"]*)"$`, testCtx.theEnvironmentVariableIsSetTo)
}

// registerOutputSteps registers output verification steps.
func (testCtx *TestContext) registerOutputSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the output should contain "([^"]*)"$`, testCtx.theOutputShouldContain)
	sc.Step(`^the output should not contain "([^"]*)"$`, testCtx.theOutputShouldNotContain)
	sc.Step(`^the output should be valid JSON$`, testCtx.theOutputShouldBeValidJSON)
	sc.Step(`^the JSON should contain "([^"]*)"$`, testCtx.theJSONShouldContain)
	sc.Step(`^the JSON field "([^"]*)" should be (\d+)$`, testCtx.theJSONFieldShouldEqual)
}

// registerFileSteps registers file verification steps.
func (testCtx *TestContext) registerFileSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the file "([^"]*)" should exist$`, testCtx.theFileShouldExist)
	sc.Step(`^the file "([^"]*)" should not exist$`, testCtx.theFileShouldNotExist)
	sc.Step(`^the file "([^"]*)" should contain "([^"]*)"$`, testCtx.theFileShouldContain)
	sc.Step(`^the file "([^"]*)" should be valid CSV$`, testCtx.theFileShouldBeValidCSV)
}
