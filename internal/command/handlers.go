package command

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/hpungsan/quill/internal/errors"
	"github.com/hpungsan/quill/internal/repo"
	"github.com/hpungsan/quill/internal/thesis"
)

// NewDefaultRegistry builds the full command catalog wired to the document
// facade. The catalog is immutable after this call.
func NewDefaultRegistry(doc *repo.Document, version string) *Registry {
	var registry *Registry

	defs := []*Definition{
		// Thesis metadata commands
		{
			Name:        "start",
			Description: "Initialize a new thesis project",
			Usage:       "start <title>",
			Handler:     metadataSetter(doc, "Thesis project initialized", "Please provide a thesis title", func(u *repo.MetadataUpdate, v string) { u.Title = &v }),
		},
		{
			Name:        "set-title",
			Description: "Set the thesis title",
			Usage:       "set-title <title>",
			Handler:     metadataSetter(doc, "Thesis title updated", "Please provide a thesis title", func(u *repo.MetadataUpdate, v string) { u.Title = &v }),
		},
		{
			Name:        "set-author",
			Description: "Set the thesis author",
			Usage:       "set-author <name>",
			Handler:     metadataSetter(doc, "Author updated", "Please provide an author name", func(u *repo.MetadataUpdate, v string) { u.Author = &v }),
		},
		{
			Name:        "set-field",
			Description: "Set the thesis field of study",
			Usage:       "set-field <field>",
			Handler:     metadataSetter(doc, "Field of study updated", "Please provide a field of study", func(u *repo.MetadataUpdate, v string) { u.Field = &v }),
		},
		{
			Name:        "set-supervisor",
			Description: "Set the thesis supervisor",
			Usage:       "set-supervisor <name>",
			Handler:     metadataSetter(doc, "Supervisor updated", "Please provide a supervisor name", func(u *repo.MetadataUpdate, v string) { u.Supervisor = &v }),
		},
		{
			Name:        "set-university",
			Description: "Set the university for the thesis",
			Usage:       "set-university <name>",
			Handler:     metadataSetter(doc, "University updated", "Please provide a university name", func(u *repo.MetadataUpdate, v string) { u.University = &v }),
		},
		{
			Name:        "set-abstract",
			Description: "Set the thesis abstract",
			Usage:       "set-abstract <text>",
			Handler:     metadataSetter(doc, "Abstract updated", "Please provide an abstract", func(u *repo.MetadataUpdate, v string) { u.Abstract = &v }),
		},
		{
			Name:        "set-keywords",
			Description: "Set the thesis keywords (comma-separated)",
			Usage:       "set-keywords <keyword1, keyword2, ...>",
			Handler:     handleSetKeywords(doc),
		},
		{
			Name:        "initialize-template",
			Description: "Initialize a formatting template for the thesis",
			Usage:       "initialize-template <APA|MLA|Chicago>",
			Handler:     handleInitializeTemplate(doc),
		},

		// Chapter commands
		{
			Name:        "add-chapter",
			Description: "Add a new chapter to the thesis",
			Usage:       "add-chapter <title>",
			Handler:     handleAddChapter(doc),
		},
		{
			Name:        "list-chapters",
			Description: "List all thesis chapters",
			Usage:       "list-chapters",
			Handler:     handleListChapters(doc),
		},
		{
			Name:        "edit-chapter",
			Description: "Edit a thesis chapter",
			Usage:       "edit-chapter <id> <title>",
			Handler:     handleEditChapter(doc),
		},
		{
			Name:        "delete-chapter",
			Description: "Remove a chapter from the thesis",
			Usage:       "delete-chapter <id>",
			Handler:     handleDeleteChapter(doc),
		},
		{
			Name:        "reorder-chapters",
			Description: "Reorder chapters by listing every chapter ID in the new order",
			Usage:       "reorder-chapters <id> <id> ...",
			Handler:     handleReorderChapters(doc),
		},

		// Section commands
		{
			Name:        "list-sections",
			Description: "List sections for a specific chapter or all chapters",
			Usage:       "list-sections [chapterId]",
			Handler:     handleListSections(doc),
		},
		{
			Name:        "add-section",
			Description: "Add a new section to a specific chapter",
			Usage:       "add-section <chapterId> <title> [content]",
			Handler:     handleAddSection(doc),
		},
		{
			Name:        "edit-section",
			Description: "Edit a section in a specific chapter",
			Usage:       "edit-section <chapterId> <sectionId> <title|content> <new-value>",
			Handler:     handleEditSection(doc),
		},
		{
			Name:        "delete-section",
			Description: "Delete a section from a specific chapter",
			Usage:       "delete-section <chapterId> <sectionId>",
			Handler:     handleDeleteSection(doc),
		},
		{
			Name:        "merge-sections",
			Description: "Merge two sections, moving content from source to target",
			Usage:       "merge-sections <sourceChapterId> <sourceId> <targetChapterId> <targetId>",
			Handler:     handleMergeSections(doc),
		},

		// Reference commands
		{
			Name:        "add-reference",
			Description: "Add a new reference to the thesis bibliography",
			Usage:       "add-reference <type> <field1=value1> <field2=value2> ...",
			Handler:     handleAddReference(doc),
		},
		{
			Name:        "list-references",
			Description: "List all references in the thesis bibliography",
			Usage:       "list-references",
			Handler:     handleListReferences(doc),
		},
		{
			Name:        "search-references",
			Description: "Search references by query",
			Usage:       "search-references <query>",
			Handler:     handleSearchReferences(doc),
		},
		{
			Name:        "delete-reference",
			Description: "Delete a reference by its ID",
			Usage:       "delete-reference <id>",
			Handler:     handleDeleteReference(doc),
		},
		{
			Name:        "generate-bibliography",
			Description: "Generate bibliography in specified citation style",
			Usage:       "generate-bibliography [APA|MLA|Chicago]",
			Handler:     handleGenerateBibliography(doc),
		},
		{
			Name:        "set-citation-style",
			Description: "Set the default citation style",
			Usage:       "set-citation-style <APA|MLA|Chicago>",
			Handler:     handleSetCitationStyle(doc),
		},

		// Document commands
		{
			Name:        "export",
			Description: "Export the full thesis document as JSON",
			Usage:       "export",
			Handler:     handleExport(doc),
		},
		{
			Name:        "help",
			Description: "List all available commands",
			Usage:       "help",
			Handler: func(ctx context.Context, args []string) (*Result, error) {
				return &Result{
					Success: true,
					Message: "Available commands",
					Data:    registry.List(),
				}, nil
			},
		},
		{
			Name:        "status",
			Description: "Show thesis progress and status",
			Usage:       "status",
			Handler:     handleStatus(doc),
		},
		{
			Name:        "about",
			Description: "Show information about quill",
			Usage:       "about",
			Handler: func(ctx context.Context, args []string) (*Result, error) {
				return &Result{
					Success: true,
					Message: fmt.Sprintf("quill %s — command-driven thesis drafting engine. Type \"help\" for commands.", version),
				}, nil
			},
		},
	}

	registry = NewRegistry(defs)
	return registry
}

// metadataSetter builds a handler for the single-field metadata commands:
// the joined arguments become the new field value.
func metadataSetter(doc *repo.Document, okMsg, emptyMsg string, assign func(*repo.MetadataUpdate, string)) Handler {
	return func(ctx context.Context, args []string) (*Result, error) {
		value := strings.TrimSpace(strings.Join(args, " "))
		if value == "" {
			return nil, errors.NewInvalidRequest(emptyMsg)
		}
		var update repo.MetadataUpdate
		assign(&update, value)
		md, err := doc.Metadata.Upsert(ctx, update)
		if err != nil {
			return nil, err
		}
		return &Result{Success: true, Message: okMsg, Data: md}, nil
	}
}

func handleSetKeywords(doc *repo.Document) Handler {
	return func(ctx context.Context, args []string) (*Result, error) {
		joined := strings.TrimSpace(strings.Join(args, " "))
		if joined == "" {
			return nil, errors.NewInvalidRequest("Please provide at least one keyword")
		}
		keywords := []string{}
		for _, kw := range strings.Split(joined, ",") {
			if kw = strings.TrimSpace(kw); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		md, err := doc.Metadata.Upsert(ctx, repo.MetadataUpdate{Keywords: &keywords})
		if err != nil {
			return nil, err
		}
		return &Result{Success: true, Message: "Keywords updated", Data: md}, nil
	}
}

func handleInitializeTemplate(doc *repo.Document) Handler {
	return func(ctx context.Context, args []string) (*Result, error) {
		if len(args) < 1 {
			return nil, errors.NewInvalidRequest("Please provide a valid template (APA, MLA, or Chicago)")
		}
		style, ok := thesis.ParseStyle(args[0])
		if !ok {
			return nil, errors.NewInvalidRequest("Please provide a valid template (APA, MLA, or Chicago)")
		}
		template := string(style)
		md, err := doc.Metadata.Upsert(ctx, repo.MetadataUpdate{Template: &template})
		if err != nil {
			return nil, err
		}
		return &Result{Success: true, Message: "Template set successfully", Data: md}, nil
	}
}

func handleAddChapter(doc *repo.Document) Handler {
	return func(ctx context.Context, args []string) (*Result, error) {
		title := strings.TrimSpace(strings.Join(args, " "))
		if title == "" {
			return nil, errors.NewInvalidRequest("Please provide a chapter title")
		}
		chapter, err := doc.Chapters.Add(ctx, title)
		if err != nil {
			return nil, err
		}
		return &Result{
			Success: true,
			Message: fmt.Sprintf("Chapter %q added successfully", title),
			Data:    chapter,
		}, nil
	}
}

func handleListChapters(doc *repo.Document) Handler {
	return func(ctx context.Context, args []string) (*Result, error) {
		chapters, err := doc.Chapters.List(ctx)
		if err != nil {
			return nil, err
		}
		if len(chapters) == 0 {
			return &Result{
				Success: true,
				Message: `No chapters found. Use "add-chapter" to create your first chapter.`,
				Data:    chapters,
			}, nil
		}
		return &Result{
			Success: true,
			Message: fmt.Sprintf("Found %d chapter(s)", len(chapters)),
			Data:    chapters,
		}, nil
	}
}

func handleEditChapter(doc *repo.Document) Handler {
	return func(ctx context.Context, args []string) (*Result, error) {
		if len(args) < 1 {
			return nil, errors.NewInvalidRequest("Please provide a chapter ID")
		}
		id := args[0]
		title := strings.TrimSpace(strings.Join(args[1:], " "))
		if title == "" {
			return nil, errors.NewInvalidRequest("Please provide a new title for the chapter")
		}
		chapter, err := doc.Chapters.UpdateByID(ctx, id, repo.ChapterUpdate{Title: &title})
		if err != nil {
			return nil, err
		}
		return &Result{
			Success: true,
			Message: fmt.Sprintf("Chapter %s updated successfully to %q", id, title),
			Data:    chapter,
		}, nil
	}
}

func handleDeleteChapter(doc *repo.Document) Handler {
	return func(ctx context.Context, args []string) (*Result, error) {
		if len(args) < 1 {
			return nil, errors.NewInvalidRequest("Please provide a chapter ID")
		}
		if err := doc.Chapters.DeleteByID(ctx, args[0]); err != nil {
			return nil, err
		}
		return &Result{Success: true, Message: "Chapter deleted successfully"}, nil
	}
}

func handleReorderChapters(doc *repo.Document) Handler {
	return func(ctx context.Context, args []string) (*Result, error) {
		if len(args) == 0 {
			return nil, errors.NewInvalidRequest("Please list every chapter ID in the new order")
		}

		chapters, err := doc.Chapters.List(ctx)
		if err != nil {
			return nil, err
		}

		// The new order must be a permutation of the current IDs; the
		// repository's Reorder trusts its input, so validate here.
		byID := make(map[string]thesis.Chapter, len(chapters))
		for _, ch := range chapters {
			byID[ch.ID] = ch
		}
		if len(args) != len(chapters) {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("expected %d chapter ID(s), got %d", len(chapters), len(args)))
		}

		reordered := make([]thesis.Chapter, 0, len(args))
		seen := make(map[string]bool, len(args))
		for _, id := range args {
			ch, ok := byID[id]
			if !ok {
				return nil, errors.NewNotFound("chapter", id)
			}
			if seen[id] {
				return nil, errors.NewInvalidRequest(fmt.Sprintf("duplicate chapter ID: %s", id))
			}
			seen[id] = true
			reordered = append(reordered, ch)
		}

		if err := doc.Chapters.Reorder(ctx, reordered); err != nil {
			return nil, err
		}
		return &Result{Success: true, Message: "Chapters reordered successfully", Data: reordered}, nil
	}
}

func handleListSections(doc *repo.Document) Handler {
	return func(ctx context.Context, args []string) (*Result, error) {
		chapterID := ""
		if len(args) > 0 {
			chapterID = args[0]
		}
		sections, err := doc.Sections.List(ctx, chapterID)
		if err != nil {
			return nil, err
		}
		if len(sections) == 0 {
			msg := "No sections found in any chapter"
			if chapterID != "" {
				msg = fmt.Sprintf("No sections found in chapter %s", chapterID)
			}
			return &Result{Success: true, Message: msg, Data: sections}, nil
		}
		msg := fmt.Sprintf("Found %d section(s)", len(sections))
		if chapterID != "" {
			msg = fmt.Sprintf("Sections for chapter %s", chapterID)
		}
		return &Result{Success: true, Message: msg, Data: sections}, nil
	}
}

func handleAddSection(doc *repo.Document) Handler {
	return func(ctx context.Context, args []string) (*Result, error) {
		if len(args) < 2 {
			return nil, errors.NewInvalidRequest("Please provide chapter ID and section title")
		}
		chapterID := args[0]
		title := args[1]
		content := strings.TrimSpace(strings.Join(args[2:], " "))

		section, err := doc.Sections.Add(ctx, chapterID, title, content)
		if err != nil {
			return nil, err
		}
		return &Result{
			Success: true,
			Message: fmt.Sprintf("Section %q added to chapter %s successfully", title, chapterID),
			Data:    section,
		}, nil
	}
}

func handleEditSection(doc *repo.Document) Handler {
	return func(ctx context.Context, args []string) (*Result, error) {
		if len(args) < 4 {
			return nil, errors.NewInvalidRequest("Please provide chapter ID, section ID, field to edit, and new value")
		}
		chapterID, sectionID, field := args[0], args[1], args[2]
		value := strings.TrimSpace(strings.Join(args[3:], " "))

		if field != "title" && field != "content" {
			return nil, errors.NewInvalidRequest("Can only edit title or content")
		}
		if value == "" {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("New %s cannot be empty", field))
		}

		var update repo.SectionUpdate
		if field == "title" {
			update.Title = &value
		} else {
			update.Content = &value
		}

		section, err := doc.Sections.Edit(ctx, chapterID, sectionID, update)
		if err != nil {
			return nil, err
		}
		return &Result{
			Success: true,
			Message: fmt.Sprintf("Section %s in chapter %s updated successfully", sectionID, chapterID),
			Data:    section,
		}, nil
	}
}

func handleDeleteSection(doc *repo.Document) Handler {
	return func(ctx context.Context, args []string) (*Result, error) {
		if len(args) < 2 {
			return nil, errors.NewInvalidRequest("Please provide chapter ID and section ID")
		}
		chapterID, sectionID := args[0], args[1]
		if err := doc.Sections.Delete(ctx, chapterID, sectionID); err != nil {
			return nil, err
		}
		return &Result{
			Success: true,
			Message: fmt.Sprintf("Section %s deleted from chapter %s successfully", sectionID, chapterID),
		}, nil
	}
}

func handleMergeSections(doc *repo.Document) Handler {
	return func(ctx context.Context, args []string) (*Result, error) {
		if len(args) < 4 {
			return nil, errors.NewInvalidRequest("Please provide source chapter ID, source section ID, target chapter ID, and target section ID")
		}
		srcChapter, srcSection, tgtChapter, tgtSection := args[0], args[1], args[2], args[3]

		merged, err := doc.Sections.Merge(ctx, srcChapter, srcSection, tgtChapter, tgtSection)
		if err != nil {
			return nil, err
		}
		return &Result{
			Success: true,
			Message: fmt.Sprintf("Section %s from chapter %s merged into section %s of chapter %s",
				srcSection, srcChapter, tgtSection, tgtChapter),
			Data: merged,
		}, nil
	}
}

func handleAddReference(doc *repo.Document) Handler {
	return func(ctx context.Context, args []string) (*Result, error) {
		if len(args) < 1 {
			return nil, errors.NewInvalidRequest("Please provide reference details")
		}

		input := repo.ReferenceInput{Type: args[0]}
		for _, arg := range args[1:] {
			key, value, ok := strings.Cut(arg, "=")
			if !ok || key == "" || value == "" {
				continue
			}
			switch strings.ToLower(key) {
			case "title":
				input.Title = value
			case "authors", "author":
				for _, a := range strings.Split(value, ",") {
					if a = strings.TrimSpace(a); a != "" {
						input.Authors = append(input.Authors, a)
					}
				}
			case "year":
				year, err := strconv.Atoi(value)
				if err != nil {
					return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid year: %s", value))
				}
				input.Year = &year
			case "publisher":
				input.Publisher = value
			case "url":
				input.URL = value
			case "doi":
				input.DOI = value
			default:
				if input.Extra == nil {
					input.Extra = make(map[string]string)
				}
				input.Extra[strings.ToLower(key)] = value
			}
		}

		ref, err := doc.References.Add(ctx, input)
		if err != nil {
			return nil, err
		}
		return &Result{Success: true, Message: "Reference added successfully", Data: ref}, nil
	}
}

func handleListReferences(doc *repo.Document) Handler {
	return func(ctx context.Context, args []string) (*Result, error) {
		refs, err := doc.References.List(ctx)
		if err != nil {
			return nil, err
		}
		return &Result{Success: true, Message: "References retrieved", Data: refs}, nil
	}
}

func handleSearchReferences(doc *repo.Document) Handler {
	return func(ctx context.Context, args []string) (*Result, error) {
		query := strings.TrimSpace(strings.Join(args, " "))
		if query == "" {
			return nil, errors.NewInvalidRequest("Please provide a search query")
		}
		refs, err := doc.References.Search(ctx, query)
		if err != nil {
			return nil, err
		}
		return &Result{
			Success: true,
			Message: fmt.Sprintf("Found %d matching reference(s)", len(refs)),
			Data:    refs,
		}, nil
	}
}

func handleDeleteReference(doc *repo.Document) Handler {
	return func(ctx context.Context, args []string) (*Result, error) {
		if len(args) < 1 {
			return nil, errors.NewInvalidRequest("Please provide a reference ID")
		}
		if err := doc.References.Delete(ctx, args[0]); err != nil {
			return nil, err
		}
		return &Result{Success: true, Message: "Reference deleted successfully"}, nil
	}
}

func handleGenerateBibliography(doc *repo.Document) Handler {
	return func(ctx context.Context, args []string) (*Result, error) {
		var style thesis.CitationStyle
		if len(args) > 0 {
			parsed, ok := thesis.ParseStyle(args[0])
			if !ok {
				return nil, errors.NewInvalidRequest("Please provide a valid citation style (APA, MLA, or Chicago)")
			}
			style = parsed
		}
		lines, err := doc.References.GenerateBibliography(ctx, style)
		if err != nil {
			return nil, err
		}
		return &Result{Success: true, Message: "Bibliography generated", Data: lines}, nil
	}
}

func handleSetCitationStyle(doc *repo.Document) Handler {
	return func(ctx context.Context, args []string) (*Result, error) {
		if len(args) < 1 {
			return nil, errors.NewInvalidRequest("Please provide a valid citation style (APA, MLA, or Chicago)")
		}
		style, ok := thesis.ParseStyle(args[0])
		if !ok {
			return nil, errors.NewInvalidRequest("Please provide a valid citation style (APA, MLA, or Chicago)")
		}
		if err := doc.References.SetCitationStyle(ctx, style); err != nil {
			return nil, err
		}
		return &Result{Success: true, Message: fmt.Sprintf("Citation style set to %s", style)}, nil
	}
}

func handleExport(doc *repo.Document) Handler {
	return func(ctx context.Context, args []string) (*Result, error) {
		snapshot, err := doc.ExportAll(ctx)
		if err != nil {
			return nil, err
		}
		return &Result{
			Success: true,
			Message: "Thesis data exported",
			Data:    json.RawMessage(snapshot),
		}, nil
	}
}

func handleStatus(doc *repo.Document) Handler {
	return func(ctx context.Context, args []string) (*Result, error) {
		progress, err := doc.ComputeProgress(ctx)
		if err != nil {
			return nil, err
		}
		status, err := doc.ComputeStatus(ctx)
		if err != nil {
			return nil, err
		}
		return &Result{
			Success: true,
			Message: fmt.Sprintf("Thesis status: %s", status),
			Data: map[string]any{
				"progress": progress,
				"status":   status,
			},
		}, nil
	}
}
