package memory

import "context"

// Catalog is a static course and technology name lookup. Unknown ids resolve to "".
type Catalog struct {
	courses      map[string]string
	technologies map[string]string
}

func NewCatalog(courses, technologies map[string]string) *Catalog {
	if courses == nil {
		courses = map[string]string{}
	}
	if technologies == nil {
		technologies = map[string]string{}
	}
	return &Catalog{courses: courses, technologies: technologies}
}

func (c *Catalog) CourseTitle(_ context.Context, id string) (string, error) {
	return c.courses[id], nil
}

func (c *Catalog) TechnologyName(_ context.Context, id string) (string, error) {
	return c.technologies[id], nil
}
