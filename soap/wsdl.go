package soap

// WSDL is the static service description for the RaaS endpoint. It is
// versioned with the code, not generated: client tooling binds against it,
// so the operation and item shapes here must track envelope.go exactly.
const WSDL = `<?xml version="1.0"?>
<definitions name="RaaSService"
  xmlns="http://schemas.xmlsoap.org/wsdl/"
  xmlns:soap="http://schemas.xmlsoap.org/wsdl/soap/"
  xmlns:xsd="http://www.w3.org/2001/XMLSchema"
  xmlns:tns="urn:openhcm:raas"
  targetNamespace="urn:openhcm:raas">
  <types>
    <xsd:schema targetNamespace="urn:openhcm:raas" elementFormDefault="qualified">
      <xsd:element name="GetBenefitsCost">
        <xsd:complexType>
          <xsd:sequence>
            <xsd:element name="Dept" type="xsd:string" minOccurs="0"/>
            <xsd:element name="From" type="xsd:date" minOccurs="0"/>
            <xsd:element name="To" type="xsd:date" minOccurs="0"/>
          </xsd:sequence>
        </xsd:complexType>
      </xsd:element>
      <xsd:element name="GetBenefitsCostResponse">
        <xsd:complexType>
          <xsd:sequence>
            <xsd:element name="Items" minOccurs="0">
              <xsd:complexType>
                <xsd:sequence>
                  <xsd:element name="Item" maxOccurs="unbounded" minOccurs="0">
                    <xsd:complexType>
                      <xsd:sequence>
                        <xsd:element name="WorkerId" type="xsd:string"/>
                        <xsd:element name="FirstName" type="xsd:string"/>
                        <xsd:element name="LastName" type="xsd:string"/>
                        <xsd:element name="Department" type="xsd:string"/>
                        <xsd:element name="Salary" type="xsd:decimal"/>
                        <xsd:element name="YearsOfService" type="xsd:int"/>
                        <xsd:element name="BenefitsCost" type="xsd:decimal"/>
                        <xsd:element name="PctSalary" type="xsd:decimal" minOccurs="0"/>
                        <xsd:element name="TotalComp" type="xsd:decimal"/>
                      </xsd:sequence>
                    </xsd:complexType>
                  </xsd:element>
                </xsd:sequence>
              </xsd:complexType>
            </xsd:element>
          </xsd:sequence>
        </xsd:complexType>
      </xsd:element>
    </xsd:schema>
  </types>
  <message name="GetBenefitsCostRequest">
    <part name="parameters" element="tns:GetBenefitsCost"/>
  </message>
  <message name="GetBenefitsCostResponse">
    <part name="parameters" element="tns:GetBenefitsCostResponse"/>
  </message>
  <portType name="RaaSPortType">
    <operation name="GetBenefitsCost">
      <input message="tns:GetBenefitsCostRequest"/>
      <output message="tns:GetBenefitsCostResponse"/>
    </operation>
  </portType>
  <binding name="RaaSBinding" type="tns:RaaSPortType">
    <soap:binding style="document" transport="http://schemas.xmlsoap.org/soap/http"/>
    <operation name="GetBenefitsCost">
      <soap:operation soapAction="urn:openhcm:raas#GetBenefitsCost"/>
      <input><soap:body use="literal"/></input>
      <output><soap:body use="literal"/></output>
    </operation>
  </binding>
  <service name="RaaSService">
    <port name="RaaSPort" binding="tns:RaaSBinding">
      <soap:address location="http://localhost:8080/api/soap/raas"/>
    </port>
  </service>
</definitions>`
