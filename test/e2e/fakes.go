package e2e

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/downfa11-org/pubsub-harness/util"
)

// Environment shared between the fixture and the fake components.
const (
	envFake            = "E2E_FAKE"
	envStateDir        = "E2E_STATE_DIR"
	envTopic           = "E2E_TOPIC"
	envEvents          = "E2E_EVENTS"
	envBrokerSilent    = "E2E_BROKER_SILENT"
	envCreateFails     = "E2E_CREATE_FAILS"
	envSubscriberStuck = "E2E_SUBSCRIBER_STUCK"
	envPublisherExit   = "E2E_PUBLISHER_EXIT"
)

const (
	readyFile    = "broker.ready"
	shutdownFile = "broker.shutdown"
	journalFile  = "journal"
	topicsDir    = "topics"

	fakeDeadline = 60 * time.Second
	fakePoll     = 10 * time.Millisecond
)

// runFake plays one external component of the scenario. The components
// only share the state directory.
func runFake(role string, args []string) int {
	f := fake{
		state: os.Getenv(envStateDir),
		topic: os.Getenv(envTopic),
		args:  args,
	}
	switch role {
	case "broker":
		return f.broker()
	case "topic-admin":
		return f.topicAdmin()
	case "broker-admin":
		return f.brokerAdmin()
	case "subscriber":
		return f.subscriber()
	case "publisher":
		return f.publisher()
	}
	fmt.Fprintf(os.Stderr, "unknown fake role %q\n", role)
	return 100
}

type fake struct {
	state string
	topic string
	args  []string
}

func (f fake) path(elem ...string) string {
	return filepath.Join(append([]string{f.state}, elem...)...)
}

func (f fake) journal(format string, v ...interface{}) {
	fh, err := os.OpenFile(f.path(journalFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer fh.Close()
	fmt.Fprintf(fh, format+"\n", v...)
}

// option returns the value of the first --x.y.Suffix=value argument.
func (f fake) option(suffix string) string {
	for _, a := range f.args {
		if k, v, ok := strings.Cut(a, "="); ok && strings.HasSuffix(k, suffix) {
			return v
		}
	}
	return ""
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(fakeDeadline)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(fakePoll)
	}
	return false
}

func (f fake) broker() int {
	fmt.Println(os.Getpid())
	fmt.Println("loading service configuration")

	if os.Getenv(envBrokerSilent) != "" {
		fmt.Println("service failed to initialize")
		return 1
	}
	if db := f.option(".DBEnvName.IceStorm"); db == "" || !exists(db) {
		fmt.Printf("database environment %q is missing\n", db)
		return 2
	}

	if err := os.WriteFile(f.path(readyFile), nil, 0o644); err != nil {
		return 3
	}
	f.journal("broker ready")
	fmt.Printf("warning: slow start\nservices ready: %s\n", f.option(".PrintServicesReady"))

	if !waitFor(func() bool { return exists(f.path(shutdownFile)) }) {
		return 4
	}
	f.journal("broker stopped")
	return 0
}

func (f fake) topicAdmin() int {
	if !exists(f.path(readyFile)) {
		fmt.Println("error: connection refused")
		return 1
	}

	var command string
	for i, a := range f.args {
		if a == "-e" && i+1 < len(f.args) {
			command = f.args[i+1]
		}
	}
	op, topic, _ := strings.Cut(command, " ")
	dir := f.path(topicsDir, topic)

	switch op {
	case "create":
		if os.Getenv(envCreateFails) != "" || exists(dir) {
			fmt.Printf("error: topic %q could not be created\n", topic)
			return 1
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 1
		}
	case "destroy":
		if err := os.RemoveAll(dir); err != nil {
			return 1
		}
	default:
		fmt.Printf("error: unknown command %q\n", command)
		return 1
	}
	f.journal("%s %s", op, topic)
	return 0
}

func (f fake) brokerAdmin() int {
	if len(f.args) == 0 || f.args[len(f.args)-1] != "shutdown" {
		return 1
	}
	if err := os.WriteFile(f.path(shutdownFile), nil, 0o644); err != nil {
		return 1
	}
	f.journal("shutdown")
	return 0
}

func (f fake) subscriber() int {
	fmt.Println(os.Getpid())

	lock := f.args[len(f.args)-1]
	if exists(lock) {
		fmt.Printf("error: lock file %s already exists\n", lock)
		return 1
	}
	if err := os.WriteFile(lock, []byte(fmt.Sprint(os.Getpid())), 0o644); err != nil {
		return 1
	}
	f.journal("subscriber ready")
	fmt.Println("subscriber adapter ready")

	if os.Getenv(envSubscriberStuck) != "" {
		time.Sleep(fakeDeadline)
		return 1
	}

	want := util.ParseInt(os.Getenv(envEvents), 10)
	dir := f.path(topicsDir, f.topic)
	consumed := func() int {
		entries, _ := os.ReadDir(dir)
		return len(entries)
	}
	if !waitFor(func() bool { return consumed() >= want }) {
		return 1
	}

	f.journal("subscriber consumed %d", consumed())
	if err := os.Remove(lock); err != nil {
		return 1
	}
	return 0
}

func (f fake) publisher() int {
	dir := f.path(topicsDir, f.topic)
	if !exists(dir) {
		fmt.Printf("error: no such topic %q\n", f.topic)
		return 1
	}

	n := util.ParseInt(os.Getenv(envEvents), 10)
	for i := 0; i < n; i++ {
		if err := os.WriteFile(filepath.Join(dir, fmt.Sprintf("event-%03d", i)), []byte("event"), 0o644); err != nil {
			return 1
		}
		fmt.Printf("published event %d\n", i)
	}
	f.journal("published %d", n)
	return util.ParseInt(os.Getenv(envPublisherExit), 0)
}
