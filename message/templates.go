package message

// BuiltinTemplates returns the default SWIFT MT templates the harness
// is seeded with.
func BuiltinTemplates() []*Template {
	return []*Template{
		NewTemplate("MT103", mt103Content, "Single Customer Credit Transfer", "PAYMENTS"),
		NewTemplate("MT202", mt202Content, "General Financial Institution Transfer", "TREASURY"),
		NewTemplate("MT950", mt950Content, "Statement Message", "REPORTING"),
	}
}

const mt103Content = `{1:F01BANKBEBBAXXX0000000000}{2:I103BANKDEFFXXXXN}{4:
:20:REFERENCE123
:23B:CRED
:32A:230101EUR10000,00
:50K:ORDERING CUSTOMER
123 MAIN STREET
NEW YORK
:52A:BANKBEBB
:57A:BANKDEFF
:59:BENEFICIARY CUSTOMER
456 OAK AVENUE
FRANKFURT
:70:PAYMENT FOR INVOICE 12345
:71A:SHA
-}`

const mt202Content = `{1:F01BANKBEBBAXXX0000000000}{2:I202BANKDEFFXXXXN}{4:
:20:REFERENCE456
:21:RELATED123
:32A:230101EUR20000,00
:52A:BANKBEBB
:57A:BANKDEFF
:58A:BENEFICIARY BANK
:72:/ACC/123456789
-}`

const mt950Content = `{1:F01BANKBEBBAXXX0000000000}{2:I950BANKDEFFXXXXN}{4:
:20:STATEMENT123
:25:12345678901
:28C:123/1
:60F:C230101EUR50000,00
:61:2301010101C10000,00NCHK123456
:86:PAYMENT RECEIVED
:61:2301010102D5000,00NCHK654321
:86:PAYMENT SENT
:62F:C230101EUR55000,00
-}`
