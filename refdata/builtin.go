package refdata

// Builtin returns the seed reference data set.
func Builtin() Set {
	return Set{
		Currencies: {
			"USD", "EUR", "GBP", "JPY", "CHF", "CAD", "AUD", "NZD", "SGD", "HKD",
			"CNY", "SEK", "NOK", "DKK", "ZAR", "MXN", "BRL", "INR", "RUB", "THB",
		},
		BankPrefixes: {
			"BANK", "FIN", "CITI", "TRAD", "PAY", "TRUST", "METRO", "WEST", "EAST", "UNION",
			"ROYAL", "NATL", "FIRST", "INTER", "GLOBAL", "PACIFIC", "TRANS", "CREDIT", "CAPITAL", "PRIME",
		},
		BankSuffixes: {
			"US", "EU", "GB", "JP", "CN", "SG", "AU", "DE", "FR", "IT",
			"ES", "CA", "CH", "KR", "HK", "BR", "MX", "IN", "AE", "SA",
		},
		PaymentTypes: {
			"INVOICE", "PAYMENT", "TRANSFER", "SALARY", "COMMISSION", "SERVICES", "CONSULTING",
			"DIVIDEND", "ROYALTY", "LICENSING", "RENTAL", "SUBSCRIPTION", "INTEREST", "LOAN", "REFUND",
		},
		ReferencePrefixes: {
			"REF", "INV", "TR", "PAY", "PO", "TX", "SL", "FC", "TF", "PMT",
			"CTR", "ACH", "WIR", "FX", "DIV", "AP", "AR", "STMT", "REB", "BONU",
		},
		FirstNames: {
			"JOHN", "JANE", "ROBERT", "MARY", "DAVID", "LISA", "MICHAEL", "SARAH", "JAMES", "EMILY",
			"WILLIAM", "EMMA", "JOSEPH", "OLIVIA", "RICHARD", "SOPHIA", "THOMAS", "ISABELLA", "CHARLES", "MIA",
		},
		LastNames: {
			"SMITH", "JONES", "BROWN", "JOHNSON", "DAVIS", "MILLER", "WILSON", "MOORE", "ANDERSON", "TAYLOR",
			"THOMAS", "JACKSON", "WHITE", "HARRIS", "MARTIN", "THOMPSON", "GARCIA", "MARTINEZ", "ROBINSON", "CLARK",
		},
		StreetNames: {
			"MAIN", "HIGH", "PARK", "OAK", "PINE", "MAPLE", "BROADWAY", "MARKET", "RIVER", "LAKE",
			"FOREST", "MEADOW", "SUNSET", "HILL", "VALLEY", "SPRING", "OCEAN", "MOUNTAIN", "CEDAR", "WILLOW",
		},
		StreetTypes: {
			"STREET", "AVENUE", "ROAD", "BOULEVARD", "DRIVE", "LANE", "PLACE", "COURT", "WAY", "CIRCLE",
			"TERRACE", "PATH", "TRAIL", "PLAZA", "SQUARE", "CROSSING", "GROVE", "PARK", "ALLEY", "HIGHWAY",
		},
		Cities: {
			"NEW YORK", "LONDON", "PARIS", "BERLIN", "TOKYO", "SYDNEY", "SINGAPORE", "HONG KONG", "MADRID", "ROME",
			"DUBAI", "TORONTO", "MOSCOW", "BEIJING", "SAO PAULO", "MUMBAI", "ISTANBUL", "SEOUL", "MEXICO CITY", "AMSTERDAM",
		},
		CompanyPrefixes: {
			"GLOBAL", "UNITED", "FIRST", "INTER", "TRANS", "MEGA", "MICRO", "NEW", "EASTERN", "WESTERN",
			"NATIONAL", "PACIFIC", "METRO", "ALPHA", "BETA", "DELTA", "SIGMA", "CENTRAL", "CROWN", "PRIME",
		},
		CompanyMids: {
			"BANK", "TRADE", "FINANCE", "TECH", "SYSTEMS", "SOLUTIONS", "PARTNERS", "HOLDINGS", "INSURANCE", "INVESTMENTS",
			"LOGISTICS", "EXPORTS", "IMPORTS", "INDUSTRIES", "ENERGY", "HEALTHCARE", "TELECOM", "MEDIA", "DIGITAL", "ASSET",
		},
		CompanySuffixes: {
			"LTD", "INC", "CORP", "LLC", "PLC", "SA", "AG", "GROUP", "CO", "TRUST",
			"HOLDINGS", "PARTNERS", "ASSOCIATES", "INTERNATIONAL", "WORLDWIDE", "ENTERPRISES", "VENTURES", "CAPITAL", "SERVICES",
		},
		AccountNumbers: {
			"12345678901234", "98765432109876", "11223344556677", "55667788991010",
			"11223311223311", "99887766554433", "12121212121212", "34343434343434",
			"11111222223333", "44444555556666", "77777888889999", "10203040506070",
		},
		AmountValues: {
			"100000,00", "250000,00", "500000,00", "750000,00", "1000000,00",
			"1500000,00", "2000000,00", "5000000,00", "10000,00", "25000,00",
			"50000,00", "75000,00", "125000,00", "175000,00", "225000,00",
		},
		PaymentDetailTemplates: {
			"PAYMENT FOR SERVICES",
			"CONSULTING FEE",
			"PRODUCT PURCHASE",
			"COMMISSION",
			"INVOICE SETTLEMENT",
			"TRANSFER TO ACCOUNT",
			"CONTRACT PAYMENT",
			"INVOICE {number:10000:99999}",
			"PAYMENT REF: {string:8}",
			"ORDER {number:1000:9999}/{number:1:99}",
			"CONTRACT {number:100000:999999}",
		},
		InstructionTemplates: {
			"PLEASE CREDIT BENEFICIARY ACCOUNT PROMPTLY",
			"REF: {string:8}",
			"DO NOT CONVERT - KEEP IN ORIGINAL CURRENCY",
			"CHARGES TO BE PAID BY BENEFICIARY",
			"CHARGES TO BE PAID BY ORDERING CUSTOMER",
			"PAYMENT RELATED TO CONTRACT {string:6}",
			"NOTIFY BENEFICIARY UPON RECEIPT",
		},
	}
}
