package iso8583

const (
	maxFieldID = 192

	// DefaultMessageSize covers the MTI and every field up to 192.
	DefaultMessageSize = maxFieldID + 1

	BitmapSize         = 16 // fields 1-128
	ExtendedBitmapSize = 8  // fields 129-192
)

// Network management MTIs.
const (
	MTI_NMM_REQUEST  = "0800"
	MTI_NMM_RESPONSE = "0810"
)

// Descriptors inserted by the packager when a schema omits them.
var (
	// Field0 is the placeholder MTI: 4 ASCII characters.
	Field0 = FieldDescriptor{ID: 0, Length: LengthFixed, Encoding: EncodingASCII, MaxLength: 4}
	// Field1 carries the primary and secondary bitmaps as raw bytes.
	Field1 = FieldDescriptor{ID: 1, Length: LengthFixed, Encoding: EncodingBinary, MaxLength: BitmapSize}
	// Field65 carries the tertiary bitmap as raw bytes.
	Field65 = FieldDescriptor{ID: 65, Length: LengthFixed, Encoding: EncodingBinary, MaxLength: ExtendedBitmapSize}
)

func alignPtr(a Alignment) *Alignment { return &a }

func strPtr(s string) *string { return &s }

func fixedN(id, n int) FieldDescriptor {
	return FieldDescriptor{ID: id, Length: LengthFixed, Encoding: EncodingASCII, MaxLength: n,
		Align: alignPtr(AlignUntrimmedRight), PadWith: strPtr("0")}
}

func fixedANS(id, n int) FieldDescriptor {
	return FieldDescriptor{ID: id, Length: LengthFixed, Encoding: EncodingASCII, MaxLength: n,
		Align: alignPtr(AlignTrimmedLeft), PadWith: strPtr(" ")}
}

func fixedB(id, n int) FieldDescriptor {
	return FieldDescriptor{ID: id, Length: LengthFixed, Encoding: EncodingBinary, MaxLength: n,
		Align: alignPtr(AlignNone)}
}

func varANS(id int, lt LengthType, max int) FieldDescriptor {
	return FieldDescriptor{ID: id, Length: lt, Encoding: EncodingASCII, MaxLength: max}
}

func varB(id int, lt LengthType, max int) FieldDescriptor {
	return FieldDescriptor{ID: id, Length: lt, Encoding: EncodingBinary, MaxLength: max}
}

// ASCII1987Descriptors returns an ISO 8583:1987 schema with an ASCII MTI,
// binary bitmaps, ASCII-prefixed variable fields and fields 0-128 defined.
// Numeric fixed fields are right aligned with zeros and kept untrimmed;
// alphanumeric fixed fields are left aligned with spaces and trimmed.
func ASCII1987Descriptors() []FieldDescriptor {
	return []FieldDescriptor{
		Field0,
		Field1,
		varANS(2, LengthLLVAR, 19),     // Primary Account Number (PAN)
		fixedN(3, 6),                   // Processing Code
		fixedN(4, 12),                  // Amount, Transaction
		fixedN(5, 12),                  // Amount, Settlement
		fixedN(6, 12),                  // Amount, Cardholder Billing
		fixedN(7, 10),                  // Transmission Date & Time (MMDDhhmmss)
		fixedN(8, 8),                   // Amount, Cardholder Billing Fee
		fixedN(9, 8),                   // Conversion Rate, Settlement
		fixedN(10, 8),                  // Conversion Rate, Cardholder Billing
		fixedN(11, 6),                  // System Trace Audit Number (STAN)
		fixedN(12, 6),                  // Time, Local Transaction (hhmmss)
		fixedN(13, 4),                  // Date, Local Transaction (MMDD)
		fixedN(14, 4),                  // Date, Expiration
		fixedN(15, 4),                  // Date, Settlement
		fixedN(16, 4),                  // Date, Conversion
		fixedN(17, 4),                  // Date, Capture
		fixedN(18, 4),                  // Merchant Type
		fixedN(19, 4),                  // Acquiring Institution Country Code
		fixedN(20, 4),                  // PAN Extended, Country Code
		fixedN(21, 3),                  // Forwarding Institution Country Code
		fixedN(22, 3),                  // Point of Service Entry Mode
		fixedN(23, 3),                  // Application PAN Sequence Number
		fixedN(24, 3),                  // Function Code (ISO 8583:1993) / Network International Identifier
		fixedN(25, 2),                  // Point of Service Condition Code
		fixedN(26, 2),                  // Point of Service Capture Code
		fixedN(27, 3),                  // Authorizing Identification Response Length
		fixedN(28, 9),                  // Amount, Transaction Fee (X+N 8)
		fixedN(29, 3),                  // Amount, Settlement Fee (X+N 8)
		fixedN(30, 3),                  // Amount, Transaction Processing Fee (X+N 8)
		varANS(31, LengthLLVAR, 99),    // Amount, Settlement Processing Fee (X+N 8)
		varANS(32, LengthLLVAR, 99),    // Acquiring Institution Identification Code
		varANS(33, LengthLLVAR, 99),    // Forwarding Institution Identification Code
		varANS(34, LengthLLVAR, 28),    // Primary Account Number, Extended
		varANS(35, LengthLLVAR, 37),    // Track 2 Data
		varANS(36, LengthLLVAR, 99),    // Track 3 Data
		fixedANS(37, 12),               // Retrieval Reference Number
		fixedANS(38, 6),                // Authorization Identification Response
		fixedANS(39, 2),                // Response Code
		fixedANS(40, 3),                // Service Restriction Code
		fixedANS(41, 8),                // Card Acceptor Terminal Identification
		fixedANS(42, 15),               // Card Acceptor Identification Code
		fixedANS(43, 40),               // Card Acceptor Name/Location
		varANS(44, LengthLLVAR, 25),    // Additional Response Data
		varANS(45, LengthLLVAR, 76),    // Track 1 Data
		varANS(46, LengthLLLVAR, 999),  // Additional Data - ISO
		varANS(47, LengthLLLVAR, 999),  // Additional Data - National
		varANS(48, LengthLLLVAR, 999),  // Additional Data - Private
		fixedANS(49, 3),                // Currency Code, Transaction
		fixedANS(50, 3),                // Currency Code, Settlement
		fixedANS(51, 3),                // Currency Code, Cardholder Billing
		fixedB(52, 8),                  // Personal Identification Number (PIN) Data
		fixedN(53, 16),                 // Security Related Control Information
		varANS(54, LengthLLLVAR, 120),  // Additional Amounts
		varB(55, LengthLLLVAR, 999),    // ICC Data (EMV)
		varANS(56, LengthLLLVAR, 999),  // Reserved ISO
		varANS(57, LengthLLLVAR, 999),  // Reserved National
		varANS(58, LengthLLLVAR, 999),  // Reserved National
		varANS(59, LengthLLLVAR, 999),  // Reserved National
		varANS(60, LengthLLLVAR, 999),  // Reserved Private
		varANS(61, LengthLLLVAR, 999),  // Reserved Private
		varANS(62, LengthLLLVAR, 999),  // Reserved Private
		varANS(63, LengthLLLVAR, 999),  // Reserved Private
		fixedB(64, 8),                  // Message Authentication Code (MAC)
		Field65,                        // Bitmap, Extended
		fixedN(66, 1),                  // Settlement Code
		fixedN(67, 2),                  // Extended Payment Code
		fixedN(68, 3),                  // Receiving Institution Country Code
		fixedN(69, 3),                  // Settlement Institution Country Code
		fixedN(70, 3),                  // Network Management Information Code
		fixedN(71, 4),                  // Message Number
		fixedN(72, 4),                  // Message Number, Last
		fixedN(73, 6),                  // Date, Action (YYYYMMDD)
		fixedN(74, 10),                 // Credits, Number
		fixedN(75, 10),                 // Credits, Reversal Number
		fixedN(76, 10),                 // Debits, Number
		fixedN(77, 10),                 // Debits, Reversal Number
		fixedN(78, 10),                 // Transfer, Number
		fixedN(79, 10),                 // Transfer, Reversal Number
		fixedN(80, 10),                 // Inquiries, Number
		fixedN(81, 10),                 // Authorizations, Number
		fixedN(82, 12),                 // Credits, Processing Fee Amount
		fixedN(83, 12),                 // Credits, Transaction Fee Amount
		fixedN(84, 12),                 // Debits, Processing Fee Amount
		fixedN(85, 12),                 // Debits, Transaction Fee Amount
		fixedN(86, 16),                 // Credits, Amount
		fixedN(87, 16),                 // Credits, Reversal Amount
		fixedN(88, 16),                 // Debits, Amount
		fixedN(89, 16),                 // Debits, Reversal Amount
		fixedN(90, 42),                 // Original Data Elements
		fixedANS(91, 1),                // File Update Code
		fixedANS(92, 2),                // File Security Code
		fixedANS(93, 5),                // Response Indicator
		fixedANS(94, 7),                // Service Indicator
		fixedANS(95, 42),               // Replacement Amounts
		fixedB(96, 8),                  // Message Security Code
		fixedN(97, 17),                 // Amount, Net Settlement (X+N 16)
		fixedANS(98, 25),               // Payee
		varANS(99, LengthLLVAR, 11),    // Settlement Institution Identification Code
		varANS(100, LengthLLVAR, 11),   // Receiving Institution Identification Code
		varANS(101, LengthLLVAR, 17),   // File Name
		varANS(102, LengthLLVAR, 28),   // Account Identification 1
		varANS(103, LengthLLVAR, 28),   // Account Identification 2
		varANS(104, LengthLLLVAR, 100), // Transaction Description
		varANS(105, LengthLLLVAR, 999), // Reserved for ISO Use
		varANS(106, LengthLLLVAR, 999), // Reserved for ISO Use
		varANS(107, LengthLLLVAR, 999), // Reserved for ISO Use
		varANS(108, LengthLLLVAR, 999), // Reserved for ISO Use
		varANS(109, LengthLLLVAR, 999), // Reserved for ISO Use
		varANS(110, LengthLLLVAR, 999), // Reserved for ISO Use
		varANS(111, LengthLLLVAR, 999), // Reserved for ISO Use
		varANS(112, LengthLLLVAR, 999), // Reserved for National Use
		varANS(113, LengthLLLVAR, 999), // Reserved for National Use
		varANS(114, LengthLLLVAR, 999), // Reserved for National Use
		varANS(115, LengthLLLVAR, 999), // Reserved for National Use
		varANS(116, LengthLLLVAR, 999), // Reserved for National Use
		varANS(117, LengthLLLVAR, 999), // Reserved for National Use
		varANS(118, LengthLLLVAR, 999), // Reserved for National Use
		varANS(119, LengthLLLVAR, 999), // Reserved for National Use
		varANS(120, LengthLLLVAR, 999), // Reserved for Private Use
		varANS(121, LengthLLLVAR, 999), // Reserved for Private Use
		varANS(122, LengthLLLVAR, 999), // Reserved for Private Use
		varANS(123, LengthLLLVAR, 999), // Reserved for Private Use
		varANS(124, LengthLLLVAR, 999), // Reserved for Private Use
		varANS(125, LengthLLLVAR, 999), // Reserved for Private Use
		varANS(126, LengthLLLVAR, 999), // Reserved for Private Use
		varANS(127, LengthLLLVAR, 999), // Reserved for Private Use
		fixedB(128, 8),                 // Message Authentication Code (MAC)
	}
}
