package bootloader

// Device is the (product ID, flash size, human name) triple the
// bootloader's Get ID response resolves to. The table below is the
// original tool's device list, carried verbatim.
type Device struct {
	PID       uint16
	FlashSize uint32
	Name      string
}

// Devices is the static table consulted once per Connect, searched
// linearly by PID exactly as the original device table was.
var Devices = []Device{
	{0x0440, 0x00040000, "F05xxx/030x8"},
	{0x0444, 0x00040000, "F03xx4/03xx6"},
	{0x0442, 0x00040000, "F030xC/09xxx"},
	{0x0445, 0x00040000, "F04xxx/070x6"},
	{0x0448, 0x00040000, "F070xB/071xx/072xx"},
	{0x0412, 0x00008000, "F10xxx low-density"},
	{0x0410, 0x00020000, "F10xxx medium-density"},
	{0x0414, 0x00080000, "F10xxx high-density"},
	{0x0420, 0x00020000, "F10xxx medium-density value line"},
	{0x0428, 0x00080000, "F10xxx high-density value line"},
	{0x0418, 0x00040000, "F105xx/107xx"},
	{0x0430, 0x00100000, "F10xxx extra-density"},
	{0x0423, 0x00040000, "F401xB/401xC"},
}

// Lookup searches Devices for pid, returning (Device{}, false) if the
// product is not one this tool knows how to drive.
func Lookup(pid uint16) (Device, bool) {
	for _, d := range Devices {
		if d.PID == pid {
			return d, true
		}
	}
	return Device{}, false
}
