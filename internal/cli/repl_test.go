package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	arg   string
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Login(ctx context.Context) error {
	f.calls = append(f.calls, "login")
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.calls = append(f.calls, "logout")
	f.loggedIn = false
	return nil
}
func (f *fakeExec) CacheKey(ctx context.Context) error {
	f.calls = append(f.calls, "cachekey")
	return nil
}
func (f *fakeExec) Publish(ctx context.Context) error {
	f.calls = append(f.calls, "publish")
	return nil
}
func (f *fakeExec) Delete(ctx context.Context, slug string) error {
	f.calls = append(f.calls, "delete")
	f.arg = slug
	return nil
}
func (f *fakeExec) List(ctx context.Context) error { f.calls = append(f.calls, "list"); return nil }
func (f *fakeExec) Save(ctx context.Context) error { f.calls = append(f.calls, "save"); return nil }
func (f *fakeExec) AddGallery(ctx context.Context) error {
	f.calls = append(f.calls, "gallery")
	return nil
}
func (f *fakeExec) RemoveGallery(ctx context.Context) error {
	f.calls = append(f.calls, "rmgallery")
	return nil
}
func (f *fakeExec) EditSocial(ctx context.Context) error {
	f.calls = append(f.calls, "social")
	return nil
}
func (f *fakeExec) EditCard(ctx context.Context) error {
	f.calls = append(f.calls, "card")
	return nil
}
func (f *fakeExec) EditSite(ctx context.Context) error {
	f.calls = append(f.calls, "site")
	return nil
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"help",
		"publish",
		"list",
		"save",
		"foobar",
		"exit",
	}, "\n"))

	exec := &fakeExec{loggedIn: false}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "status" }, sc)

	wantOrder := []string{"login", "publish", "list", "save"}
	if len(exec.calls) < len(wantOrder) {
		t.Fatalf("few calls: %+v", exec.calls)
	}
	idx := 0
	for _, c := range exec.calls {
		if idx < len(wantOrder) && c == wantOrder[idx] {
			idx++
		}
	}
	if idx != len(wantOrder) {
		t.Fatalf("commands order mismatch: got %v, want subseq %v", exec.calls, wantOrder)
	}
}

func TestRunREPL_DeleteArg(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.NewReader("delete hello-world\nquit\n")
	exec := &fakeExec{loggedIn: true}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "s" }, sc)

	if exec.arg != "hello-world" {
		t.Fatalf("delete arg = %q", exec.arg)
	}
}

func TestRunREPL_EOFExits(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.NewReader("")
	exec := &fakeExec{}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "" }, sc)

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
}
