package curriculum

// Board lists the subjects a board offers per grade.
type Board struct {
	Name   string           `yaml:"name"`
	Grades map[int][]string `yaml:"grades"`
}

// TopicHints holds topic suggestions for one board and subject, keyed by grade.
type TopicHints struct {
	Board   string           `yaml:"board"`
	Subject string           `yaml:"subject"`
	Grades  map[int][]string `yaml:"grades"`
}

// catalogFile is the on-disk shape of catalog.yaml.
type catalogFile struct {
	Boards []Board      `yaml:"boards"`
	Topics []TopicHints `yaml:"topics"`
}

// keywordsFile is the on-disk shape of keywords.yaml.
type keywordsFile struct {
	Subjects map[string][]string `yaml:"subjects"`
}

// MinGrade and MaxGrade bound the grades every board supports.
const (
	MinGrade = 1
	MaxGrade = 12
)
