package enums

// BuyerType classifies who submitted a quote inquiry.
type BuyerType string

const (
	BuyerTypeConsumer    BuyerType = "consumer"
	BuyerTypeElectrician BuyerType = "electrician"
	BuyerTypeShopkeeper  BuyerType = "shopkeeper"
	BuyerTypeBuilder     BuyerType = "builder"
	BuyerTypeContractor  BuyerType = "contractor"
	BuyerTypeGovt        BuyerType = "govt"
)

var validBuyerTypes = []BuyerType{BuyerTypeConsumer, BuyerTypeElectrician, BuyerTypeShopkeeper, BuyerTypeBuilder, BuyerTypeContractor, BuyerTypeGovt}

func (v BuyerType) String() string { return string(v) }

func (v BuyerType) IsValid() bool { return known(validBuyerTypes, v) }

func ParseBuyerType(value string) (BuyerType, error) {
	return parse(validBuyerTypes, value, "buyer type")
}
