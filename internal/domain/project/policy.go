package project

// Policy decides who may change a project and its members and tasks.
type Policy interface {
	CanMutate(actorID string, p *Project) bool
}

// OwnerPolicy lets only the project owner mutate.
type OwnerPolicy struct{}

func (OwnerPolicy) CanMutate(actorID string, p *Project) bool {
	return p != nil && actorID != "" && actorID == p.OwnerID
}
