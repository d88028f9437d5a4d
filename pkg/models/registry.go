package models

// AnnotatorKey names a registered annotator. It is the path segment clients use.
type AnnotatorKey string

const (
	SimpleTextGeographyAnnotator AnnotatorKey = "SimpleTextGeographyAnnotator"
	TextTableGeographyAnnotator  AnnotatorKey = "TextTableGeographyAnnotator"
	SimpleTextClassifier         AnnotatorKey = "SimpleTextClassifier"
	WatsonHealthAnnotator        AnnotatorKey = "WatsonHealthAnnotator"
	PipelineBiomedAnnotator      AnnotatorKey = "PipelineBiomedAnnotator"
)

func (k AnnotatorKey) String() string {
	return string(k)
}

// Registry is the set of annotators exposed by the API, populated once at startup.
type Registry struct {
	order      []AnnotatorKey
	annotators map[AnnotatorKey]Annotator
}

func NewRegistry(annotators ...Annotator) *Registry {
	r := &Registry{annotators: make(map[AnnotatorKey]Annotator, len(annotators))}
	for _, a := range annotators {
		if _, ok := r.annotators[a.Key()]; !ok {
			r.order = append(r.order, a.Key())
		}
		r.annotators[a.Key()] = a
	}
	return r
}

// Get returns the annotator registered under name, or a NotFoundError.
func (r *Registry) Get(name string) (Annotator, error) {
	a, ok := r.annotators[AnnotatorKey(name)]
	if !ok {
		return nil, NewNotFoundError("annotator " + name)
	}
	return a, nil
}

// Names returns the registered annotator names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	for i, k := range r.order {
		names[i] = k.String()
	}
	return names
}
