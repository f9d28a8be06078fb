package reporting

import (
	"encoding/xml"
	"fmt"
	"os"
	"time"

	"github.com/toolgauge/toolgauge/internal/models"
	"github.com/toolgauge/toolgauge/internal/scoring"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one tested model.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Skipped    int             `xml:"skipped,attr"`
	Time       float64         `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one capability scenario.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
}

// JUnitFailure represents a scenario whose predicate rejected the response.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitError represents a transport or internal failure.
type JUnitError struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitSkipped marks a scenario that never executed.
type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// ConvertToJUnit maps a run report onto JUnit XML: one testsuite per model,
// one testcase per scenario, so CI systems render capability regressions the
// same way they render test regressions.
func ConvertToJUnit(report *models.Report) *JUnitTestSuites {
	suites := &JUnitTestSuites{}

	for _, res := range report.Results {
		suite := JUnitTestSuite{
			Name:      res.ModelID,
			Tests:     len(res.Scenarios),
			Failures:  res.CountByStatus(models.StatusFailed),
			Errors:    res.CountByStatus(models.StatusError),
			Skipped:   res.CountByStatus(models.StatusSkipped),
			Time:      float64(res.TotalLatencyMs) / 1000.0,
			Timestamp: report.Summary.Timestamp.Format(time.RFC3339),
			Properties: []JUnitProperty{
				{Name: "owned_by", Value: res.OwnedBy},
				{Name: "overall_score", Value: fmt.Sprintf("%.2f", res.OverallScore)},
				{Name: "recommendation", Value: res.Recommendation},
			},
		}

		for _, name := range scoring.ScenarioNames() {
			sr, ok := res.Scenarios[name]
			if !ok {
				continue
			}
			suite.TestCases = append(suite.TestCases, convertScenario(res.ModelID, sr))
		}

		suites.Tests += suite.Tests
		suites.Failures += suite.Failures
		suites.Errors += suite.Errors
		suites.Time += suite.Time
		suites.TestSuites = append(suites.TestSuites, suite)
	}

	return suites
}

func convertScenario(model string, sr models.ScenarioResult) JUnitTestCase {
	tc := JUnitTestCase{
		Name:      sr.Scenario,
		Classname: model,
		Time:      float64(sr.LatencyMs) / 1000.0,
	}

	switch sr.Status {
	case models.StatusFailed:
		tc.Failure = &JUnitFailure{
			Message: sr.ErrorMessage,
			Type:    "ScenarioFailure",
		}
	case models.StatusError:
		tc.Error = &JUnitError{
			Message: sr.ErrorMessage,
			Type:    "TransportError",
		}
	case models.StatusSkipped:
		tc.Skipped = &JUnitSkipped{Message: sr.ErrorMessage}
	}

	return tc
}

// WriteJUnitXML writes the report as JUnit XML to the specified file path.
func WriteJUnitXML(report *models.Report, path string) error {
	suites := ConvertToJUnit(report)

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	output := append([]byte(xml.Header), data...)
	return os.WriteFile(path, output, 0644)
}
