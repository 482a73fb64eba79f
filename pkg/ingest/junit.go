package ingest

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/testdrive/adocreport/pkg/report"
)

// junitDocument covers both accepted root elements: a <testsuites>
// container or a single bare <testsuite>.
type junitDocument struct {
	XMLName xml.Name
	Suites  []junitSuite `xml:"testsuite"`

	// Populated when the root itself is a <testsuite>.
	Name  string      `xml:"name,attr"`
	Cases []junitCase `xml:"testcase"`
}

type junitSuite struct {
	Name  string      `xml:"name,attr"`
	Cases []junitCase `xml:"testcase"`
}

type junitCase struct {
	Name      string       `xml:"name,attr"`
	Classname string       `xml:"classname,attr"`
	Time      string       `xml:"time,attr"`
	Failure   *junitNotice `xml:"failure"`
	Error     *junitNotice `xml:"error"`
	Skipped   *junitNotice `xml:"skipped"`
	SystemOut string       `xml:"system-out"`
}

// junitNotice is the shared shape of <failure>, <error> and <skipped>.
type junitNotice struct {
	Message string `xml:"message,attr"`
	Text    string `xml:",chardata"`
}

// MalformedFileError reports a secondary results file that is present but
// not parseable.
type MalformedFileError struct {
	Path string
	Err  error
}

func (e *MalformedFileError) Error() string {
	return fmt.Sprintf("malformed results file %s: %v", e.Path, e.Err)
}

func (e *MalformedFileError) Unwrap() error { return e.Err }

// ReadJUnit merges the suites and cases of a JUnit XML file into run. An
// absent or empty file contributes nothing. Cases keep the same merge
// semantics as stream records: a (suite, case) pair seen before is
// replaced in place, so secondary files win over the stream.
func ReadJUnit(log logrus.FieldLogger, path string, run *report.Run) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.WithField("file", path).Debug("No secondary results file")

			return nil
		}

		return fmt.Errorf("reading %s: %w", path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	var doc junitDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return &MalformedFileError{Path: path, Err: err}
	}

	switch doc.XMLName.Local {
	case "testsuite":
		if err := mergeSuite(run, path, doc.Name, doc.Cases); err != nil {
			return err
		}
	case "testsuites":
		for _, suite := range doc.Suites {
			if err := mergeSuite(run, path, suite.Name, suite.Cases); err != nil {
				return err
			}
		}
	default:
		return &MalformedFileError{
			Path: path,
			Err:  fmt.Errorf("unexpected root element <%s>", doc.XMLName.Local),
		}
	}

	log.WithFields(logrus.Fields{
		"file":   path,
		"suites": len(run.Suites),
	}).Debug("Merged secondary results file")

	return nil
}

// mergeSuite folds the cases of one <testsuite> element into run.
func mergeSuite(run *report.Run, path, name string, cases []junitCase) error {
	for i := range cases {
		jc := &cases[i]

		suiteName := name
		if suiteName == "" {
			suiteName = jc.Classname
		}

		if suiteName == "" || jc.Name == "" {
			return &MalformedFileError{
				Path: path,
				Err:  fmt.Errorf("testcase %q missing suite or name", jc.Name),
			}
		}

		var duration float64

		if jc.Time != "" {
			parsed, err := strconv.ParseFloat(jc.Time, 64)
			if err != nil {
				return &MalformedFileError{
					Path: path,
					Err:  fmt.Errorf("testcase %q: invalid time attribute %q", jc.Name, jc.Time),
				}
			}

			duration = parsed
		}

		outcome, message := caseOutcome(jc)

		run.Add(suiteName, &report.Case{
			Name:     jc.Name,
			Outcome:  outcome,
			Message:  message,
			Duration: duration,
			Stdout:   jc.SystemOut,
			Source:   report.SourceJUnit,
		})
	}

	return nil
}

// caseOutcome maps the child elements of a <testcase> onto the closed
// outcome set. Error takes precedence over failure when both are present.
func caseOutcome(jc *junitCase) (report.Outcome, string) {
	switch {
	case jc.Error != nil:
		return report.OutcomeErrored, noticeMessage(jc.Error)
	case jc.Failure != nil:
		return report.OutcomeFailed, noticeMessage(jc.Failure)
	case jc.Skipped != nil:
		return report.OutcomeSkipped, noticeMessage(jc.Skipped)
	}

	return report.OutcomePassed, ""
}

// noticeMessage prefers the message attribute, falling back to the element
// body.
func noticeMessage(n *junitNotice) string {
	if n.Message != "" {
		return n.Message
	}

	return n.Text
}
