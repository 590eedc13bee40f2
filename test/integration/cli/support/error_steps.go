package support

import (
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// theErrorShouldMention verifies the error message contains specific text.
func (testCtx *TestContext) theErrorShouldMention(errorText string) error {
	if testCtx.LastError == nil && testCtx.LastExitCode == 0 {
		return fmt.Errorf("no error occurred, but expected error containing '%s'", errorText)
	}

	// Check both error message and output for the expected text
	fullErrorText := testCtx.LastOutput
	if testCtx.LastError != nil {
		fullErrorText += " " + testCtx.LastError.Error()
	}

	// Convert to lowercase for case-insensitive matching
	if !strings.Contains(strings.ToLower(fullErrorText), strings.ToLower(errorText)) {
		return fmt.Errorf("error does not contain '%s'\nActual error: %s", errorText, fullErrorText)
	}

	return nil
}

// theExitCodeShouldBe verifies the process exit status.
func (testCtx *TestContext) theExitCodeShouldBe(code int) error {
	if testCtx.LastExitCode != code {
		return fmt.Errorf("exit code %d, want %d\nOutput: %s", testCtx.LastExitCode, code, testCtx.LastOutput)
	}
	return nil
}

// theErrorShouldSuggestAvailableCommands verifies cobra's suggestion output.
func (testCtx *TestContext) theErrorShouldSuggestAvailableCommands() error {
	for _, hint := range []string{"Did you mean", "unknown command", "Run 'gridwarp --help'"} {
		if strings.Contains(testCtx.LastOutput, hint) {
			return nil
		}
	}
	return fmt.Errorf("error does not suggest available commands: %s", testCtx.LastOutput)
}

// aWarningShouldBeLogged verifies a WARN level JSON log entry with the message.
func (testCtx *TestContext) aWarningShouldBeLogged(msg string) error {
	for _, line := range strings.Split(testCtx.LastOutput, "\n") {
		if strings.Contains(line, `"level":"WARN"`) && strings.Contains(line, msg) {
			return nil
		}
	}
	return fmt.Errorf("no warning '%s' logged\nOutput: %s", msg, testCtx.LastOutput)
}

// RegisterErrorSteps registers all error handling step definitions.
func (testCtx *TestContext) RegisterErrorSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the error should mention "([^"]*)"$`, testCtx.theErrorShouldMention)
	sc.Step(`^the exit code should be (\d+)$`, testCtx.theExitCodeShouldBe)
	sc.Step(`^the error should suggest available commands$`, testCtx.theErrorShouldSuggestAvailableCommands)
	sc.Step(`^a warning "([^"]*)" should be logged$`, testCtx.aWarningShouldBeLogged)
}
