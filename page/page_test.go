package page

import "testing"

func TestHeaderRoundTrip(t *testing.T) {
	f := NewFrame(0xABCDEF, 1024)
	want := Header{
		Magic:  MagicNumber,
		Type:   DataPage,
		LSN:    0x0AFAFAFE,
		Parent: 0xFEDCBA,
		PageID: 0xABCDEF,
	}
	f.WriteHeader(want)

	if !f.Dirty() {
		t.Fatal("WriteHeader() should mark the frame dirty")
	}
	got := f.ReadHeader()
	if got != want {
		t.Fatalf("ReadHeader() = %+v, want %+v", got, want)
	}
	if f.PageID() != want.PageID {
		t.Fatalf("PageID() = %d, want %d", f.PageID(), want.PageID)
	}
}

func TestCheckMagic(t *testing.T) {
	f := NewFrame(1, 1024)
	if err := f.CheckMagic(); err == nil {
		t.Fatal("expected CheckMagic() to fail on a zeroed frame")
	}
	f.WriteHeader(Header{Magic: MagicNumber, Type: IndexNode, PageID: 1})
	if err := f.CheckMagic(); err != nil {
		t.Fatalf("CheckMagic() = %v, want nil", err)
	}
}

func TestReadTypeRejectsUnknownTag(t *testing.T) {
	f := NewFrame(1, 1024)
	f.WriteHeader(Header{Magic: MagicNumber, Type: 9, PageID: 1})
	if _, err := f.ReadType(); err == nil {
		t.Fatal("expected ReadType() to reject tag 9")
	}
}

func TestRequireIndexType(t *testing.T) {
	f := NewFrame(1, 1024)
	f.WriteHeader(Header{Magic: MagicNumber, Type: DataPage, PageID: 1})
	if _, err := f.RequireIndexType(); err == nil {
		t.Fatal("expected RequireIndexType() to reject a DataPage")
	}

	f.WriteHeader(Header{Magic: MagicNumber, Type: IndexLeaf, PageID: 1})
	typ, err := f.RequireIndexType()
	if err != nil {
		t.Fatalf("RequireIndexType() = %v, want nil", err)
	}
	if typ != IndexLeaf {
		t.Fatalf("RequireIndexType() = %v, want IndexLeaf", typ)
	}
}
