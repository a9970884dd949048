package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/morozRed/crashid/internal/bucket"
	"github.com/morozRed/crashid/internal/codes"
	"github.com/morozRed/crashid/internal/crashid"
)

const appCrash = `java.lang.IllegalStateException: boom
	at com.myapp.ui.Screen.render(Screen.kt:42)
	at android.os.Looper.loop(Looper.java:154)
`

const launchCrash = `java.lang.RuntimeException: Unable to start activity ComponentInfo{com.myapp/com.myapp.MainActivity}: java.lang.NullPointerException
	at android.app.ActivityThread.performLaunchActivity(ActivityThread.java:2325)
	at android.app.ActivityThread.handleLaunchActivity(ActivityThread.java:2387)
	at android.os.Handler.dispatchMessage(Handler.java:102)
Caused by: java.lang.NullPointerException
	at android.widget.TextView.setText(TextView.java:4000)
	... 3 more
`

const oomCrash = `java.lang.OutOfMemoryError: Failed to allocate a 4096 byte allocation
	at com.myapp.cache.Cache.load(Cache.java:10)
`

func TestComputeTextOutput(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "crash.txt"), appCrash)

	withWorkingDir(t, root, func() {
		stdout, err := executeRoot(t, "", "compute", "crash.txt")
		if err != nil {
			t.Fatalf("compute failed: %v", err)
		}
		if !strings.Contains(stdout, "type:     java.lang.IllegalStateException") {
			t.Fatalf("missing type line in output:\n%s", stdout)
		}
		if !strings.Contains(stdout, "location: com.myapp.ui.Screen.render") {
			t.Fatalf("missing location line in output:\n%s", stdout)
		}
	})
}

func TestComputeUsesActivityThreadMessageWithPackage(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "launch.txt"), launchCrash)

	withWorkingDir(t, root, func() {
		stdout, err := executeRoot(t, "", "compute", "launch.txt", "--key", "--package", "com.myapp")
		if err != nil {
			t.Fatalf("compute failed: %v", err)
		}
		want := crashid.Identifier{Type: "java.lang.RuntimeException", Location: "com.myapp.MainActivity.performLaunchActivity"}
		if strings.TrimSpace(stdout) != want.Key() {
			t.Fatalf("expected key %q, got %q", want.Key(), stdout)
		}

		stdout, err = executeRoot(t, "", "compute", "launch.txt", "--key")
		if err != nil {
			t.Fatalf("compute without package failed: %v", err)
		}
		want.Location = "android.app.ActivityThread.performLaunchActivity"
		if strings.TrimSpace(stdout) != want.Key() {
			t.Fatalf("expected first-frame key %q without package, got %q", want.Key(), stdout)
		}
	})
}

func TestComputeReadsConfigPackage(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, ".crashid.yaml"), "package: com.myapp\n")
	mustWriteFile(t, filepath.Join(root, "launch.log"), launchCrash)

	withWorkingDir(t, root, func() {
		stdout, err := executeRoot(t, "", "compute", "launch.log", "--json")
		if err != nil {
			t.Fatalf("compute failed: %v", err)
		}
		var payload ComputeSummary
		if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
			t.Fatalf("failed to decode compute output: %v\noutput=%s", err, stdout)
		}
		if payload.Package != "com.myapp" || payload.Causes != 2 {
			t.Fatalf("unexpected summary %+v", payload)
		}
		if payload.Identifier.Location != "com.myapp.MainActivity.performLaunchActivity" {
			t.Fatalf("expected component location, got %+v", payload.Identifier)
		}
	})
}

func TestComputeJSONFromStdin(t *testing.T) {
	root := t.TempDir()
	input := `{"type":"java.lang.OutOfMemoryError","frames":[{"class":"com.myapp.Cache","method":"load"}]}`

	withWorkingDir(t, root, func() {
		stdout, err := executeRoot(t, input, "compute", "-", "--json")
		if err != nil {
			t.Fatalf("compute failed: %v", err)
		}
		if !strings.Contains(stdout, `"location": null`) {
			t.Fatalf("expected null location for out-of-memory crash:\n%s", stdout)
		}
		var payload ComputeSummary
		if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
			t.Fatalf("failed to decode compute output: %v", err)
		}
		if payload.Input != "-" || payload.Identifier.Type != crashid.OutOfMemoryType || payload.Identifier.HasLocation() {
			t.Fatalf("unexpected summary %+v", payload)
		}
	})
}

func TestComputeErrors(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "crash.txt"), appCrash)

	withWorkingDir(t, root, func() {
		if _, err := executeRoot(t, "", "compute", "crash.txt", "--format", "yaml"); !codes.Is(err, codes.ErrUnknownFormat) {
			t.Fatalf("expected ErrUnknownFormat, got %v", err)
		}
		if _, err := executeRoot(t, "   \n", "compute"); !codes.Is(err, codes.ErrTraceEmpty) {
			t.Fatalf("expected ErrTraceEmpty for blank stdin, got %v", err)
		}
		if _, err := executeRoot(t, "", "compute", "missing.txt"); err == nil {
			t.Fatalf("expected error for missing file")
		}
		if _, err := executeRoot(t, "", "compute", "crash.txt", "--no-default-skip"); err == nil {
			t.Fatalf("expected --no-default-skip without --skip to fail")
		}
	})
}

func TestComputeCustomSkipList(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "crash.txt"), `java.lang.IllegalStateException: boom
	at okhttp3.RealCall.execute(RealCall.java:10)
	at com.myapp.net.Client.fetch(Client.java:20)
`)

	withWorkingDir(t, root, func() {
		stdout, err := executeRoot(t, "", "compute", "crash.txt", "--skip", "okhttp3")
		if err != nil {
			t.Fatalf("compute failed: %v", err)
		}
		if !strings.Contains(stdout, "location: com.myapp.net.Client.fetch") {
			t.Fatalf("expected okhttp3 frame to be skipped:\n%s", stdout)
		}
	})
}

func TestGroupBucketsTraceFiles(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "traces", "a.txt"), appCrash)
	mustWriteFile(t, filepath.Join(root, "traces", "b.log"), "12-01 10:00:00.000  123  123 E AndroidRuntime: FATAL EXCEPTION: main\n"+
		"12-01 10:00:00.000  123  123 E AndroidRuntime: java.lang.IllegalStateException: boom\n"+
		"12-01 10:00:00.000  123  123 E AndroidRuntime: \tat com.myapp.ui.Screen.render(Screen.kt:42)\n")
	mustWriteFile(t, filepath.Join(root, "traces", "oom.txt"), oomCrash)
	mustWriteFile(t, filepath.Join(root, "traces", "oom-copy.txt"), oomCrash)
	mustWriteFile(t, filepath.Join(root, "traces", "broken.txt"), "hello world\n")
	mustWriteFile(t, filepath.Join(root, "traces", "notes.md"), appCrash)
	mustWriteFile(t, filepath.Join(root, "traces", "skip", "c.txt"), appCrash)
	mustWriteFile(t, filepath.Join(root, ".crashidignore"), "skip/\n")

	withWorkingDir(t, root, func() {
		stdout, err := executeRoot(t, "", "group", "traces", "--json")
		if err != nil {
			t.Fatalf("group failed: %v", err)
		}
		var payload GroupSummary
		if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
			t.Fatalf("failed to decode group output: %v\noutput=%s", err, stdout)
		}
		if payload.Files != 5 || payload.Duplicates != 1 || payload.Total != 3 || len(payload.Buckets) != 2 {
			t.Fatalf("unexpected summary %+v", payload)
		}
		if len(payload.Failed) != 1 || payload.Failed[0] != "traces/broken.txt" {
			t.Fatalf("expected broken.txt to be reported, got %v", payload.Failed)
		}
		top := payload.Buckets[0]
		if top.Count != 2 || top.Location != "com.myapp.ui.Screen.render" {
			t.Fatalf("expected app crash bucket first, got %+v", top)
		}
		if len(top.Samples) != 2 || top.Samples[0] != "traces/a.txt" {
			t.Fatalf("unexpected samples %v", top.Samples)
		}
		if oom := payload.Buckets[1]; oom.Type != crashid.OutOfMemoryType || oom.Location != "" {
			t.Fatalf("expected out-of-memory bucket, got %+v", oom)
		}
		if _, err := os.Stat(filepath.Join(root, ".crashid", "buckets.json")); !os.IsNotExist(err) {
			t.Fatalf("expected no store without --save, stat err=%v", err)
		}
	})
}

func TestGroupSaveAccumulatesIntoStore(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "traces", "a.txt"), appCrash)

	withWorkingDir(t, root, func() {
		for i := 0; i < 2; i++ {
			if _, err := executeRoot(t, "", "group", "traces", "--save"); err != nil {
				t.Fatalf("group run %d failed: %v", i+1, err)
			}
		}

		storePath := filepath.Join(root, ".crashid", "buckets.json")
		store, err := bucket.Load(storePath)
		if err != nil {
			t.Fatalf("failed to load store: %v", err)
		}
		if store.Total() != 1 || len(store.Buckets) != 1 {
			t.Fatalf("expected a re-read report to be counted once, got %+v", store.Buckets)
		}

		mustWriteFile(t, filepath.Join(root, "traces", "b.txt"), appCrash+"\tat java.lang.Thread.run(Thread.java:764)\n")
		stdout, err := executeRoot(t, "", "group", "traces", "--save", "--json")
		if err != nil {
			t.Fatalf("third group run failed: %v", err)
		}
		var payload GroupSummary
		if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
			t.Fatalf("failed to decode group output: %v\noutput=%s", err, stdout)
		}
		if payload.Duplicates != 1 || payload.Total != 2 || len(payload.Buckets) != 1 {
			t.Fatalf("expected only the new report to be added, got %+v", payload)
		}
		if samples := payload.Buckets[0].Samples; len(samples) != 2 {
			t.Fatalf("expected both samples in the bucket, got %v", samples)
		}
	})
}

func TestGroupJSONLAndTable(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "a.txt"), appCrash)
	mustWriteFile(t, filepath.Join(root, "b.txt"), oomCrash)

	withWorkingDir(t, root, func() {
		stdout, err := executeRoot(t, "", "group", "a.txt", "b.txt", "--jsonl")
		if err != nil {
			t.Fatalf("group failed: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(stdout), "\n")
		if len(lines) != 2 {
			t.Fatalf("expected 2 jsonl lines, got %d:\n%s", len(lines), stdout)
		}
		var entry bucket.Entry
		if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
			t.Fatalf("failed to decode jsonl line: %v", err)
		}
		if entry.Key == "" || entry.Count != 1 {
			t.Fatalf("unexpected entry %+v", entry)
		}

		stdout, err = executeRoot(t, "", "group", "a.txt", "b.txt")
		if err != nil {
			t.Fatalf("group failed: %v", err)
		}
		if !strings.HasPrefix(stdout, "COUNT") || !strings.Contains(stdout, "2 crashes in 2 buckets") {
			t.Fatalf("unexpected table output:\n%s", stdout)
		}
	})
}

func TestDetectCommand(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "app", "src", "main", "AndroidManifest.xml"), `<manifest package="com.myapp"></manifest>`)

	withWorkingDir(t, root, func() {
		stdout, err := executeRoot(t, "", "detect", "app", "--json")
		if err != nil {
			t.Fatalf("detect failed: %v", err)
		}
		var payload struct {
			Package string `json:"package"`
			Source  string `json:"source"`
		}
		if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
			t.Fatalf("failed to decode detect output: %v", err)
		}
		if payload.Package != "com.myapp" || payload.Source != "manifest" {
			t.Fatalf("unexpected detect result %+v", payload)
		}
	})
}

func TestComputeDetectsPackageFromSource(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "src", "MainActivity.java"), "package com.myapp;\npublic class MainActivity {}\n")
	mustWriteFile(t, filepath.Join(root, "launch.txt"), launchCrash)

	withWorkingDir(t, root, func() {
		stdout, err := executeRoot(t, "", "compute", "launch.txt", "--source", "src")
		if err != nil {
			t.Fatalf("compute failed: %v", err)
		}
		if !strings.Contains(stdout, "location: com.myapp.MainActivity.performLaunchActivity") {
			t.Fatalf("expected detected package to drive the fallback:\n%s", stdout)
		}
	})
}

func TestVersionCommand(t *testing.T) {
	stdout, err := executeRoot(t, "", "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if strings.TrimSpace(stdout) != "crashid test" {
		t.Fatalf("unexpected version output %q", stdout)
	}
}

func executeRoot(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand("test")
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func withWorkingDir(t *testing.T, dir string, fn func()) {
	t.Helper()

	originalWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get cwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to chdir: %v", err)
	}
	defer func() {
		_ = os.Chdir(originalWD)
	}()

	fn()
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
}

func TestGroupTallyLine(t *testing.T) {
	cases := []struct {
		tally groupTally
		want  string
	}{
		{groupTally{Total: 4, Read: 2}, "2/4 read"},
		{groupTally{Total: 4, Read: 2, Duplicates: 1}, "2/4 read, 1 duplicate"},
		{groupTally{Total: 4, Read: 1, Duplicates: 1, Failed: 2}, "1/4 read, 1 duplicate, 2 unreadable"},
	}
	for _, tc := range cases {
		if got := tc.tally.line(); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}

func TestGroupProgressWritesFinalLine(t *testing.T) {
	var buf bytes.Buffer
	p := &groupProgress{out: &buf, enabled: true, tally: groupTally{Total: 3}, start: time.Now()}
	p.Read()
	p.Duplicate()
	p.Failed()
	p.Finish()
	out := buf.String()
	if !strings.Contains(out, "grouping 1/3 read, 1 duplicate, 1 unreadable in ") {
		t.Fatalf("expected final tally line, got %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Fatalf("expected trailing newline, got %q", out)
	}

	buf.Reset()
	quiet := &groupProgress{out: &buf, tally: groupTally{Total: 1}}
	quiet.Read()
	quiet.Finish()
	if buf.Len() != 0 {
		t.Fatalf("expected no output when disabled, got %q", buf.String())
	}
}
