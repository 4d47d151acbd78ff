package curriculum

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var embedded embed.FS

const (
	catalogFileName  = "catalog.yaml"
	keywordsFileName = "keywords.yaml"
)

// Catalog is the read-only curriculum: boards, subjects per grade, topic
// hints and subject keyword sets. It is safe for concurrent use because
// nothing mutates it after Load returns.
type Catalog struct {
	boards   []Board
	byBoard  map[string]Board
	hints    map[hintKey][]string
	keywords map[string][]string
}

type hintKey struct {
	board   string
	subject string
	grade   int
}

// Load reads the curriculum. An empty dir uses the data compiled into the
// binary; otherwise catalog.yaml and keywords.yaml are read from dir.
func Load(dir string) (*Catalog, error) {
	var fsys fs.FS
	if dir == "" {
		sub, err := fs.Sub(embedded, "data")
		if err != nil {
			return nil, fmt.Errorf("opening embedded curriculum: %w", err)
		}
		fsys = sub
	} else {
		fsys = os.DirFS(dir)
	}

	c, err := LoadFS(fsys)
	if err != nil {
		return nil, fmt.Errorf("loading curriculum: %w", err)
	}

	source := dir
	if source == "" {
		source = "embedded"
	}
	slog.Info("curriculum loaded", "source", source, "boards", len(c.boards), "subjects_with_keywords", len(c.keywords))
	return c, nil
}

// LoadFS reads catalog.yaml and keywords.yaml from fsys.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	var cf catalogFile
	if err := decodeFile(fsys, catalogFileName, &cf); err != nil {
		return nil, err
	}
	var kf keywordsFile
	if err := decodeFile(fsys, keywordsFileName, &kf); err != nil {
		return nil, err
	}

	if len(cf.Boards) == 0 {
		return nil, fmt.Errorf("%s: no boards defined", catalogFileName)
	}

	c := &Catalog{
		boards:   cf.Boards,
		byBoard:  make(map[string]Board, len(cf.Boards)),
		hints:    make(map[hintKey][]string),
		keywords: kf.Subjects,
	}
	if c.keywords == nil {
		c.keywords = make(map[string][]string)
	}

	for _, b := range cf.Boards {
		if b.Name == "" {
			return nil, fmt.Errorf("%s: board without a name", catalogFileName)
		}
		if _, dup := c.byBoard[b.Name]; dup {
			return nil, fmt.Errorf("%s: duplicate board %q", catalogFileName, b.Name)
		}
		for grade := range b.Grades {
			if grade < MinGrade || grade > MaxGrade {
				return nil, fmt.Errorf("%s: board %q has grade %d outside %d-%d", catalogFileName, b.Name, grade, MinGrade, MaxGrade)
			}
		}
		c.byBoard[b.Name] = b
	}

	for _, t := range cf.Topics {
		if _, ok := c.byBoard[t.Board]; !ok {
			slog.Warn("skipping topic hints for unknown board", "board", t.Board, "subject", t.Subject)
			continue
		}
		for grade, topics := range t.Grades {
			c.hints[hintKey{board: t.Board, subject: t.Subject, grade: grade}] = topics
		}
	}

	return c, nil
}

func decodeFile(fsys fs.FS, name string, v any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	return nil
}

// Boards returns the board names in declared order.
func (c *Catalog) Boards() []string {
	names := make([]string, 0, len(c.boards))
	for _, b := range c.boards {
		names = append(names, b.Name)
	}
	return names
}

// Grades returns 1 through 12.
func (c *Catalog) Grades() []int {
	grades := make([]int, 0, MaxGrade-MinGrade+1)
	for g := MinGrade; g <= MaxGrade; g++ {
		grades = append(grades, g)
	}
	return grades
}

// HasBoard reports whether board is in the catalog.
func (c *Catalog) HasBoard(board string) bool {
	_, ok := c.byBoard[board]
	return ok
}

// Subjects returns the subjects offered for board and grade. It is empty for
// an unknown board or grade.
func (c *Catalog) Subjects(board string, grade int) []string {
	b, ok := c.byBoard[board]
	if !ok {
		return []string{}
	}
	subjects, ok := b.Grades[grade]
	if !ok {
		return []string{}
	}
	return slices.Clone(subjects)
}

// HasSubject reports whether subject is offered for board and grade.
func (c *Catalog) HasSubject(board string, grade int, subject string) bool {
	b, ok := c.byBoard[board]
	if !ok {
		return false
	}
	return slices.Contains(b.Grades[grade], subject)
}

// Topics returns the topic hints for board, subject and grade, or an empty
// slice when none are recorded.
func (c *Catalog) Topics(board, subject string, grade int) []string {
	topics, ok := c.hints[hintKey{board: board, subject: subject, grade: grade}]
	if !ok {
		return []string{}
	}
	return slices.Clone(topics)
}

// Context is the curriculum context line handed to the prompt builder.
func (c *Catalog) Context(board, subject string, grade int) string {
	topics := c.Topics(board, subject, grade)
	if len(topics) == 0 {
		return fmt.Sprintf("%s topics for Grade %d", subject, grade)
	}
	return strings.Join(topics, ", ")
}

// Keywords returns the keyword set for subject in declared order, or nil when
// the subject has none.
func (c *Catalog) Keywords(subject string) []string {
	kw, ok := c.keywords[subject]
	if !ok {
		return nil
	}
	return slices.Clone(kw)
}

// KeywordSubjects returns every subject that has a keyword set, sorted.
func (c *Catalog) KeywordSubjects() []string {
	subjects := make([]string, 0, len(c.keywords))
	for s := range c.keywords {
		subjects = append(subjects, s)
	}
	slices.Sort(subjects)
	return subjects
}
