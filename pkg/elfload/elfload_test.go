package elfload

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	etExec  = 2
	emMIPS  = 8
	elfMag0 = 0x7f
)

// buildMinimalELF hand-assembles a 32-bit MIPS ELF with a single
// PT_LOAD segment carrying payload, with memsz = len(payload)+extra
// zero-filled tail bytes beyond it.
func buildMinimalELF(t *testing.T, little bool, vaddr uint32, payload []byte, extraZero uint32) []byte {
	t.Helper()
	var bo binary.ByteOrder = binary.BigEndian
	dataByte := byte(2) // ELFDATA2MSB
	if little {
		bo = binary.LittleEndian
		dataByte = 1 // ELFDATA2LSB
	}

	const ehsize = 52
	const phentsize = 32
	phoff := uint32(ehsize)
	dataOff := phoff + phentsize

	var buf bytes.Buffer
	ident := []byte{elfMag0, 'E', 'L', 'F', 1, dataByte, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	buf.Write(ident)
	binary.Write(&buf, bo, uint16(etExec))
	binary.Write(&buf, bo, uint16(emMIPS))
	binary.Write(&buf, bo, uint32(1)) // version
	binary.Write(&buf, bo, vaddr)     // entry
	binary.Write(&buf, bo, phoff)     // phoff
	binary.Write(&buf, bo, uint32(0)) // shoff
	binary.Write(&buf, bo, uint32(0)) // flags
	binary.Write(&buf, bo, uint16(ehsize))
	binary.Write(&buf, bo, uint16(phentsize))
	binary.Write(&buf, bo, uint16(1)) // phnum
	binary.Write(&buf, bo, uint16(0)) // shentsize
	binary.Write(&buf, bo, uint16(0)) // shnum
	binary.Write(&buf, bo, uint16(0)) // shstrndx

	binary.Write(&buf, bo, uint32(1))                      // p_type PT_LOAD
	binary.Write(&buf, bo, dataOff)                        // p_offset
	binary.Write(&buf, bo, vaddr)                          // p_vaddr
	binary.Write(&buf, bo, vaddr)                          // p_paddr
	binary.Write(&buf, bo, uint32(len(payload)))           // p_filesz
	binary.Write(&buf, bo, uint32(len(payload))+extraZero) // p_memsz
	binary.Write(&buf, bo, uint32(5))                      // p_flags R+X
	binary.Write(&buf, bo, uint32(4))                      // p_align

	buf.Write(payload)
	return buf.Bytes()
}

func TestLoadLittleEndianCopiesSegmentAndZeroesTail(t *testing.T) {
	payload := []byte{0xde, 0xad, 0xbe, 0xef}
	raw := buildMinimalELF(t, true, 0x400000, payload, 4)

	mem := make([]byte, 0x400000+16)
	img, err := Load(raw, mem)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x400000), img.Entry)

	assert.Equal(t, payload, mem[0x400000:0x400004])
	assert.Equal(t, []byte{0, 0, 0, 0}, mem[0x400004:0x400008])
}

func TestLoadRejectsNonMIPSMachine(t *testing.T) {
	raw := buildMinimalELF(t, true, 0x1000, []byte{1, 2, 3, 4}, 0)
	raw[18] = 3 // EM_386 in the e_machine low byte
	mem := make([]byte, 0x2000)
	_, err := Load(raw, mem)
	assert.ErrorIs(t, err, ErrNotMIPS)
}

func TestLoadRejectsSegmentLargerThanMemory(t *testing.T) {
	raw := buildMinimalELF(t, true, 0x1000, []byte{1, 2, 3, 4}, 0)
	mem := make([]byte, 0x1002)
	_, err := Load(raw, mem)
	assert.ErrorIs(t, err, ErrTooLarge)
}
