// Package iso8583 encodes and decodes bitmap-driven ISO 8583 financial
// messages.
//
// A schema is a list of FieldDescriptor values, one per data element. A
// Resolver turns each descriptor into a FieldCodec, and NewCompiledPackager
// compiles the codecs into an immutable CompiledPackager that reads and
// writes Message values:
//
//	cp, err := iso8583.NewCompiledPackager(iso8583.ASCII1987Descriptors(), nil)
//	if err != nil {
//		return err
//	}
//
//	msg := iso8583.NewMessage(iso8583.WithMTI("0200"))
//	defer msg.Release()
//	msg.SetString(2, "4111111111111111")
//	msg.SetString(4, "000000001000")
//
//	data, err := cp.PackBytes(msg)
//
// The wire layout is the MTI (field 0), the primary bitmap, the secondary
// bitmap when bit 1 is set, then every present field in ascending order.
// Field 65 carries a third bitmap for fields 129 to 192. The packager keeps
// bits 1 and 65 consistent on write; callers only set data fields.
//
// Fields are read and written through the length discipline (fixed, LL, LLL,
// LLLL or binary length prefix) and the encoding (ASCII, UTF-16, packed
// decimal, raw binary or hex) named by their descriptor.
package iso8583
