package enums

// UnitType is the selling unit of a cable product.
type UnitType string

const (
	UnitTypeMetres UnitType = "metres"
	UnitTypeCoils  UnitType = "coils"
)

var validUnitTypes = []UnitType{UnitTypeMetres, UnitTypeCoils}

func (v UnitType) String() string { return string(v) }

func (v UnitType) IsValid() bool { return known(validUnitTypes, v) }

func ParseUnitType(value string) (UnitType, error) {
	return parse(validUnitTypes, value, "unit type")
}
