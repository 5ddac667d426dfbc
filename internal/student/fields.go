package student

import "fmt"

// Field identifies one value of the admission form. The set is closed: only
// the constants below are valid.
type Field string

const (
	Name               Field = "name"
	RollNo             Field = "rollNo"
	ClassBranchSection Field = "classBranchSection"
	YearOfStudy        Field = "yearOfStudy"
	StudentEmail       Field = "studentEmail"
	StudentMobile      Field = "studentMobile"
	Caste              Field = "caste"
	Community          Field = "community"
	Religion           Field = "religion"

	ResidentialAddress1 Field = "residentialAddress1"
	ResidentialAddress2 Field = "residentialAddress2"
	ResidentialAddress3 Field = "residentialAddress3"
	ResidentialCity     Field = "residentialCity"
	ResidentialState    Field = "residentialState"
	ResidentialPincode  Field = "residentialPincode"

	FatherName       Field = "fatherName"
	FatherOccupation Field = "fatherOccupation"
	FatherIncome     Field = "fatherIncome"
	FatherMobile     Field = "fatherMobile"
	MotherName       Field = "motherName"
	MotherOccupation Field = "motherOccupation"
	MotherIncome     Field = "motherIncome"
	MotherMobile     Field = "motherMobile"

	LocalGuardianName     Field = "localGuardianName"
	LocalGuardianAddress1 Field = "localGuardianAddress1"
	LocalGuardianAddress2 Field = "localGuardianAddress2"
	LocalGuardianAddress3 Field = "localGuardianAddress3"
	LocalGuardianCity     Field = "localGuardianCity"
	LocalGuardianState    Field = "localGuardianState"
	LocalGuardianPincode  Field = "localGuardianPincode"
	LocalGuardianMobile   Field = "localGuardianMobile"

	Siblings       Field = "siblings"
	SiblingDetails Field = "siblingDetails"
	BloodGroup     Field = "bloodGroup"
	Allergies      Field = "allergies"
	HealthProblems Field = "healthProblems"
)

type fieldSpec struct {
	field    Field
	label    string
	step     int
	required bool
}

// fieldSpecs lists every field in form order.
var fieldSpecs = []fieldSpec{
	{Name, "Name of the Applicant", 1, true},
	{RollNo, "Roll No.", 1, true},
	{ClassBranchSection, "Department", 1, true},
	{YearOfStudy, "Year of Study", 1, true},
	{StudentMobile, "Student's Mobile Number", 1, true},
	{StudentEmail, "Student's Email ID", 1, true},
	{Caste, "Caste", 1, true},
	{Religion, "Religion", 1, true},
	{Community, "Community", 1, true},
	{ResidentialAddress1, "Address Line 1", 1, true},
	{ResidentialAddress2, "Address Line 2", 1, true},
	{ResidentialAddress3, "Address Line 3", 1, false},
	{ResidentialCity, "City", 1, true},
	{ResidentialState, "State", 1, true},
	{ResidentialPincode, "Pincode", 1, true},

	{FatherName, "Father's/Guardian's Name", 2, true},
	{FatherOccupation, "Father's Occupation", 2, true},
	{FatherIncome, "Father's Annual Income", 2, true},
	{FatherMobile, "Father's Mobile Number", 2, true},
	{MotherName, "Mother's/Guardian's Name", 2, true},
	{MotherOccupation, "Mother's Occupation", 2, true},
	{MotherIncome, "Mother's Annual Income", 2, true},
	{MotherMobile, "Mother's Mobile Number", 2, true},

	{LocalGuardianName, "Local Guardian's Name", 3, true},
	{LocalGuardianAddress1, "Guardian Address Line 1", 3, true},
	{LocalGuardianAddress2, "Guardian Address Line 2", 3, true},
	{LocalGuardianAddress3, "Guardian Address Line 3", 3, false},
	{LocalGuardianCity, "Guardian City", 3, true},
	{LocalGuardianState, "Guardian State", 3, true},
	{LocalGuardianPincode, "Guardian Pincode", 3, true},
	{LocalGuardianMobile, "Guardian's Mobile Number", 3, true},

	{Siblings, "No. of Siblings", 4, true},
	{BloodGroup, "Blood Group", 4, true},
	{SiblingDetails, "Details of Brothers / Sisters", 4, true},
	{Allergies, "Any Known Allergies", 4, false},
	{HealthProblems, "Specific Health Problems", 4, false},
}

var specIndex = func() map[Field]int {
	idx := make(map[Field]int, len(fieldSpecs))
	for i, spec := range fieldSpecs {
		idx[spec.field] = i
	}
	return idx
}()

// ParseField converts a wire name into a Field.
func ParseField(name string) (Field, error) {
	f := Field(name)
	if _, ok := specIndex[f]; !ok {
		return "", fmt.Errorf("unknown field %q", name)
	}
	return f, nil
}

// Valid reports whether f is one of the declared fields.
func (f Field) Valid() bool {
	_, ok := specIndex[f]
	return ok
}

// Label is the caption shown next to the input.
func (f Field) Label() string {
	if i, ok := specIndex[f]; ok {
		return fieldSpecs[i].label
	}
	return string(f)
}

// Step is the form step (1-4) that presents f, or 0 for an unknown field.
func (f Field) Step() int {
	if i, ok := specIndex[f]; ok {
		return fieldSpecs[i].step
	}
	return 0
}

// Required reports whether f must be filled before submission.
func (f Field) Required() bool {
	if i, ok := specIndex[f]; ok {
		return fieldSpecs[i].required
	}
	return false
}

// Order is the position of f in the form, used for stable output.
func (f Field) Order() int {
	if i, ok := specIndex[f]; ok {
		return i
	}
	return len(fieldSpecs)
}

// Fields returns every field in form order.
func Fields() []Field {
	out := make([]Field, len(fieldSpecs))
	for i, spec := range fieldSpecs {
		out[i] = spec.field
	}
	return out
}

// RequiredFields returns the fields that must be non-empty, in form order.
func RequiredFields() []Field {
	out := make([]Field, 0, len(fieldSpecs))
	for _, spec := range fieldSpecs {
		if spec.required {
			out = append(out, spec.field)
		}
	}
	return out
}

// StepFields returns the fields presented on step.
func StepFields(step int) []Field {
	var out []Field
	for _, spec := range fieldSpecs {
		if spec.step == step {
			out = append(out, spec.field)
		}
	}
	return out
}
