package querycache

// Key families. Every cached read uses one of these names; the dependency
// table below is defined over the same names so invalidation can be checked
// exhaustively in tests.
const (
	FamilyAnimalsList    = "animals.list"
	FamilyAnimalDetail   = "animals.detail"
	FamilyAnimalsStats   = "animals.stats"
	FamilyAnimalsNearby  = "animals.nearby"
	FamilyAnimalsRecent  = "animals.recent"
	FamilyAnimalsPending = "animals.pending"
	FamilyMyReports      = "animals.my-reports"
	FamilyMyStats        = "animals.my-stats"
	FamilyCareHistory    = "care.history"
	FamilyCareFeeding    = "care.feeding"
	FamilyCareRecords    = "care.records"
	FamilyCareSchedule   = "care.schedule"
	FamilyCommunityLogs  = "community.logs"
	FamilyCommunityAll   = "community.all"
)

// Mutation names every state-changing operation the client performs.
type Mutation string

const (
	MutationReportAnimal    Mutation = "animals.report"
	MutationUpdateAnimal    Mutation = "animals.update"
	MutationDeleteAnimal    Mutation = "animals.delete"
	MutationApproveAnimal   Mutation = "animals.approve"
	MutationRejectAnimal    Mutation = "animals.reject"
	MutationAddCareRecord   Mutation = "care.record"
	MutationAddFeedingLog   Mutation = "care.feeding"
	MutationAddCommunityLog Mutation = "community.post"
	MutationUpvote          Mutation = "community.upvote"
	MutationRemoveUpvote    Mutation = "community.remove-upvote"
)

// Dependents maps each mutation to the key families it invalidates. The
// table is the single source of truth for cross-entry invalidation; there
// is no prefix-matching convention behind it.
var Dependents = map[Mutation][]string{
	MutationReportAnimal:    {FamilyAnimalsList, FamilyAnimalsStats, FamilyAnimalsRecent, FamilyMyReports, FamilyMyStats},
	MutationUpdateAnimal:    {FamilyAnimalDetail, FamilyAnimalsList},
	MutationDeleteAnimal:    {FamilyAnimalsList, FamilyAnimalsStats, FamilyAnimalsNearby},
	MutationApproveAnimal:   {FamilyAnimalsPending, FamilyAnimalsList, FamilyAnimalsStats},
	MutationRejectAnimal:    {FamilyAnimalsPending, FamilyAnimalsList, FamilyAnimalsStats},
	MutationAddCareRecord:   {FamilyAnimalDetail, FamilyCareHistory, FamilyCareRecords},
	MutationAddFeedingLog:   {FamilyAnimalDetail, FamilyCareHistory, FamilyCareFeeding, FamilyCareSchedule},
	MutationAddCommunityLog: {FamilyAnimalDetail, FamilyCommunityLogs, FamilyCommunityAll, FamilyMyStats},
	MutationUpvote:          {FamilyAnimalDetail, FamilyCommunityLogs, FamilyCommunityAll},
	MutationRemoveUpvote:    {FamilyAnimalDetail, FamilyCommunityLogs, FamilyCommunityAll},
}

// animalScoped lists the families whose entries are keyed per animal, so a
// mutation that names an animal only touches that animal's entries.
var animalScoped = map[string]bool{
	FamilyAnimalDetail:  true,
	FamilyCareHistory:   true,
	FamilyCareFeeding:   true,
	FamilyCareSchedule:  true,
	FamilyCommunityLogs: true,
}

// OnMutation applies the dependency table after a successful mutation.
// animalID scopes per-animal families to the affected animal; when empty,
// those families are invalidated wholesale.
func (c *Cache) OnMutation(m Mutation, animalID string) {
	for _, family := range Dependents[m] {
		if animalID != "" && animalScoped[family] {
			c.InvalidateScope(family, animalID)
			continue
		}
		c.InvalidateFamily(family)
	}
}
