package command

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hpungsan/quill/internal/repo"
	"github.com/hpungsan/quill/internal/thesis"
)

// mustExecute fails the test if the command does not succeed.
func mustExecute(t *testing.T, interp *Interpreter, line string) *Result {
	t.Helper()
	result := interp.Execute(context.Background(), line)
	if !result.Success {
		t.Fatalf("Execute(%q) failed: %q", line, result.Message)
	}
	return result
}

func TestHandlers_StartAndMetadata(t *testing.T) {
	interp, doc := newTestInterpreter(t)
	ctx := context.Background()

	result := mustExecute(t, interp, "start Distributed Consensus in Practice")
	if result.Message != "Thesis project initialized" {
		t.Errorf("message = %q", result.Message)
	}

	mustExecute(t, interp, "set-author Ada Lovelace")
	mustExecute(t, interp, "set-field Computer Science")
	mustExecute(t, interp, "set-supervisor Dr. Babbage")
	mustExecute(t, interp, "set-university Cambridge")
	mustExecute(t, interp, "set-abstract A study of consensus protocols.")
	mustExecute(t, interp, "set-keywords raft, paxos, consensus")

	md, err := doc.Metadata.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if md.Title != "Distributed Consensus in Practice" {
		t.Errorf("Title = %q", md.Title)
	}
	if md.Author != "Ada Lovelace" || md.Supervisor != "Dr. Babbage" {
		t.Errorf("metadata = %+v", md)
	}
	if len(md.Keywords) != 3 || md.Keywords[1] != "paxos" {
		t.Errorf("Keywords = %v", md.Keywords)
	}
}

func TestHandlers_MetadataRequiresValue(t *testing.T) {
	interp, _ := newTestInterpreter(t)
	ctx := context.Background()

	cases := []struct {
		line    string
		wantMsg string
	}{
		{"start", "Please provide a thesis title"},
		{"set-title", "Please provide a thesis title"},
		{"set-author", "Please provide an author name"},
		{"set-field", "Please provide a field of study"},
		{"set-supervisor", "Please provide a supervisor name"},
		{"set-university", "Please provide a university name"},
		{"set-abstract", "Please provide an abstract"},
		{"set-keywords", "Please provide at least one keyword"},
	}
	for _, tc := range cases {
		result := interp.Execute(ctx, tc.line)
		if result.Success {
			t.Errorf("%q should fail without a value", tc.line)
		}
		if result.Message != tc.wantMsg {
			t.Errorf("%q message = %q, want %q", tc.line, result.Message, tc.wantMsg)
		}
	}
}

func TestHandlers_InitializeTemplate(t *testing.T) {
	interp, doc := newTestInterpreter(t)
	ctx := context.Background()

	mustExecute(t, interp, "initialize-template mla")
	md, err := doc.Metadata.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if md.Template != "MLA" {
		t.Errorf("Template = %q, want MLA", md.Template)
	}

	result := interp.Execute(ctx, "initialize-template harvard")
	if result.Success {
		t.Error("invalid template should fail")
	}
}

func TestHandlers_ChapterLifecycle(t *testing.T) {
	interp, _ := newTestInterpreter(t)
	ctx := context.Background()

	result := mustExecute(t, interp, "add-chapter Introduction")
	chapter, ok := result.Data.(*thesis.Chapter)
	if !ok {
		t.Fatalf("Data = %T, want *thesis.Chapter", result.Data)
	}
	if chapter.ID != "1" || chapter.Title != "Introduction" {
		t.Errorf("chapter = %+v", chapter)
	}
	if result.Message != `Chapter "Introduction" added successfully` {
		t.Errorf("message = %q", result.Message)
	}

	mustExecute(t, interp, "add-chapter Methods")

	result = mustExecute(t, interp, "list-chapters")
	if result.Message != "Found 2 chapter(s)" {
		t.Errorf("message = %q", result.Message)
	}

	mustExecute(t, interp, "edit-chapter 1 Introduction and Motivation")
	result = mustExecute(t, interp, "list-chapters")
	chapters, ok := result.Data.([]thesis.Chapter)
	if !ok {
		t.Fatalf("Data = %T, want []thesis.Chapter", result.Data)
	}
	if chapters[0].Title != "Introduction and Motivation" {
		t.Errorf("edited title = %q", chapters[0].Title)
	}

	mustExecute(t, interp, "delete-chapter 2")
	result = interp.Execute(ctx, "delete-chapter 2")
	if result.Success {
		t.Error("deleting a deleted chapter should fail")
	}

	result = interp.Execute(ctx, "edit-chapter 99 Anything")
	if result.Success {
		t.Error("editing an unknown chapter should fail")
	}
}

func TestHandlers_ListChaptersEmpty(t *testing.T) {
	interp, _ := newTestInterpreter(t)

	result := mustExecute(t, interp, "list-chapters")
	if result.Message != `No chapters found. Use "add-chapter" to create your first chapter.` {
		t.Errorf("message = %q", result.Message)
	}
}

func TestHandlers_ReorderChapters(t *testing.T) {
	interp, doc := newTestInterpreter(t)
	ctx := context.Background()

	mustExecute(t, interp, "add-chapter One")
	mustExecute(t, interp, "add-chapter Two")
	mustExecute(t, interp, "add-chapter Three")

	mustExecute(t, interp, "reorder-chapters 3 1 2")
	chapters, err := doc.Chapters.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if chapters[0].Title != "Three" || chapters[2].Title != "Two" {
		t.Errorf("order = %+v", chapters)
	}

	for _, line := range []string{
		"reorder-chapters 1 2",     // wrong count
		"reorder-chapters 1 2 99",  // unknown ID
		"reorder-chapters 1 1 2",   // duplicate
	} {
		if result := interp.Execute(ctx, line); result.Success {
			t.Errorf("%q should fail", line)
		}
	}
}

func TestHandlers_SectionLifecycle(t *testing.T) {
	interp, _ := newTestInterpreter(t)
	ctx := context.Background()

	mustExecute(t, interp, "add-chapter Introduction")

	result := mustExecute(t, interp, "add-section 1 Background some text")
	section, ok := result.Data.(*thesis.Section)
	if !ok {
		t.Fatalf("Data = %T, want *thesis.Section", result.Data)
	}
	if section.ID != "1" || section.Title != "Background" || section.Content != "some text" {
		t.Errorf("section = %+v", section)
	}
	if result.Message != `Section "Background" added to chapter 1 successfully` {
		t.Errorf("message = %q", result.Message)
	}

	mustExecute(t, interp, "edit-section 1 1 content revised text")
	result = mustExecute(t, interp, "list-sections 1")
	sections, ok := result.Data.([]thesis.Section)
	if !ok {
		t.Fatalf("Data = %T, want []thesis.Section", result.Data)
	}
	if sections[0].Content != "revised text" {
		t.Errorf("content = %q", sections[0].Content)
	}

	result = interp.Execute(ctx, "edit-section 1 1 author Bob")
	if result.Success || result.Message != "Can only edit title or content" {
		t.Errorf("invalid field: success=%v message=%q", result.Success, result.Message)
	}
	result = interp.Execute(ctx, "edit-section 1 1 title")
	if result.Success {
		t.Error("edit-section without a value should fail")
	}

	// First delete removes; second is a silent no-op but still succeeds
	mustExecute(t, interp, "delete-section 1 1")
	mustExecute(t, interp, "delete-section 1 1")

	result = interp.Execute(ctx, "delete-section 99 1")
	if result.Success {
		t.Error("delete-section in unknown chapter should fail")
	}
}

func TestHandlers_MergeSections(t *testing.T) {
	interp, _ := newTestInterpreter(t)
	ctx := context.Background()

	mustExecute(t, interp, "add-chapter Introduction")
	mustExecute(t, interp, "add-section 1 First alpha")
	mustExecute(t, interp, "add-section 1 Second beta")

	result := mustExecute(t, interp, "merge-sections 1 1 1 2")
	merged, ok := result.Data.(*thesis.Section)
	if !ok {
		t.Fatalf("Data = %T, want *thesis.Section", result.Data)
	}
	if merged.Content != "beta\n\nalpha" {
		t.Errorf("merged content = %q", merged.Content)
	}

	result = interp.Execute(ctx, "merge-sections 1 2")
	if result.Success {
		t.Error("merge-sections with too few args should fail")
	}
}

func TestHandlers_ReferenceLifecycle(t *testing.T) {
	interp, _ := newTestInterpreter(t)
	ctx := context.Background()

	result := mustExecute(t, interp,
		"add-reference book title=Go authors=Donovan year=2015 publisher=Addison-Wesley")
	ref, ok := result.Data.(*thesis.Reference)
	if !ok {
		t.Fatalf("Data = %T, want *thesis.Reference", result.Data)
	}
	if ref.Type != thesis.TypeBook || ref.Title != "Go" {
		t.Errorf("reference = %+v", ref)
	}
	if *ref.Year != 2015 || ref.Publisher != "Addison-Wesley" {
		t.Errorf("reference = %+v", ref)
	}

	result = mustExecute(t, interp, "list-references")
	refs, ok := result.Data.([]thesis.Reference)
	if !ok {
		t.Fatalf("Data = %T, want []thesis.Reference", result.Data)
	}
	if len(refs) != 1 {
		t.Fatalf("len(refs) = %d, want 1", len(refs))
	}

	result = mustExecute(t, interp, "search-references donovan")
	if result.Message != "Found 1 matching reference(s)" {
		t.Errorf("message = %q", result.Message)
	}

	mustExecute(t, interp, "delete-reference "+refs[0].ID)
	result = mustExecute(t, interp, "search-references donovan")
	if result.Message != "Found 0 matching reference(s)" {
		t.Errorf("message after delete = %q", result.Message)
	}

	result = interp.Execute(ctx, "add-reference book year=nineteen")
	if result.Success || !strings.Contains(result.Message, "invalid year") {
		t.Errorf("invalid year: success=%v message=%q", result.Success, result.Message)
	}
	result = interp.Execute(ctx, "add-reference podcast title=x")
	if result.Success {
		t.Error("unknown reference type should fail")
	}
}

func TestHandlers_Bibliography(t *testing.T) {
	interp, _ := newTestInterpreter(t)
	ctx := context.Background()

	mustExecute(t, interp, "add-reference book title=Walden authors=Thoreau year=1854 publisher=Ticknor")

	result := mustExecute(t, interp, "generate-bibliography APA")
	lines, ok := result.Data.([]string)
	if !ok {
		t.Fatalf("Data = %T, want []string", result.Data)
	}
	if len(lines) != 1 || !strings.Contains(lines[0], "(1854)") {
		t.Errorf("lines = %v", lines)
	}

	result = mustExecute(t, interp, "set-citation-style chicago")
	if result.Message != "Citation style set to Chicago" {
		t.Errorf("message = %q", result.Message)
	}

	// No explicit style: stored setting applies
	result = mustExecute(t, interp, "generate-bibliography")
	lines = result.Data.([]string)
	if !strings.Contains(lines[0], "Ticknor, 1854.") {
		t.Errorf("Chicago line = %q", lines[0])
	}

	if result := interp.Execute(ctx, "generate-bibliography harvard"); result.Success {
		t.Error("unknown style should fail")
	}
	if result := interp.Execute(ctx, "set-citation-style harvard"); result.Success {
		t.Error("unknown style should fail")
	}
}

func TestHandlers_StatusAndExport(t *testing.T) {
	interp, _ := newTestInterpreter(t)

	result := mustExecute(t, interp, "status")
	if result.Message != "Thesis status: Not Started" {
		t.Errorf("message = %q", result.Message)
	}
	payload, ok := result.Data.(map[string]any)
	if !ok {
		t.Fatalf("Data = %T, want map", result.Data)
	}
	if payload["status"] != repo.StatusNotStarted {
		t.Errorf("status = %v", payload["status"])
	}
	progress, ok := payload["progress"].(*repo.Progress)
	if !ok {
		t.Fatalf("progress = %T, want *repo.Progress", payload["progress"])
	}
	if progress.ProgressPercentage != 0 {
		t.Errorf("ProgressPercentage = %v", progress.ProgressPercentage)
	}

	mustExecute(t, interp, "start My Thesis")
	result = mustExecute(t, interp, "status")
	if result.Message != "Thesis status: Developing" {
		t.Errorf("message = %q", result.Message)
	}

	result = mustExecute(t, interp, "export")
	raw, ok := result.Data.(json.RawMessage)
	if !ok {
		t.Fatalf("export Data = %T, want json.RawMessage", result.Data)
	}
	if !strings.Contains(string(raw), `"My Thesis"`) {
		t.Errorf("export payload missing title: %s", raw)
	}
}

func TestHandlers_HelpAndAbout(t *testing.T) {
	interp, _ := newTestInterpreter(t)

	result := mustExecute(t, interp, "help")
	if result.Message != "Available commands" {
		t.Errorf("message = %q", result.Message)
	}
	defs, ok := result.Data.([]*Definition)
	if !ok {
		t.Fatalf("Data = %T, want []*Definition", result.Data)
	}
	names := make(map[string]bool, len(defs))
	for _, def := range defs {
		names[def.Name] = true
	}
	for _, want := range []string{
		"start", "add-chapter", "add-section", "merge-sections",
		"add-reference", "generate-bibliography", "export", "status", "about",
	} {
		if !names[want] {
			t.Errorf("help is missing %q", want)
		}
	}

	result = mustExecute(t, interp, "about")
	if !strings.Contains(result.Message, "quill test") {
		t.Errorf("about message = %q", result.Message)
	}
}
