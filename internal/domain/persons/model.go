package persons

type Person struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Title      string `json:"title"`
	FirstName  string `json:"first_name"`
	FamilyName string `json:"family_name"`
	Email      string `json:"email"`
}

// FullName is "title first family", the form offers address people by.
func (p Person) FullName() string {
	return p.Title + " " + p.FirstName + " " + p.FamilyName
}

// Address is the postal address of an organization, in the order offer documents print it.
type Address struct {
	GroupAcronym         string `json:"group_acronym"`
	Institute            string `json:"institute"`
	UmbrellaOrganization string `json:"umbrella_organization"`
	Street               string `json:"street"`
	ZipCode              string `json:"zip_code"`
	City                 string `json:"city"`
	Country              string `json:"country"`
}

// Fields returns the address as its seven lines.
func (a Address) Fields() []string {
	return []string{
		a.GroupAcronym,
		a.Institute,
		a.UmbrellaOrganization,
		a.Street,
		a.ZipCode,
		a.City,
		a.Country,
	}
}
